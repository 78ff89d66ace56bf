package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedGeometry marks geometry that could not be decoded. Callers skip
// the offending feature and continue.
var ErrMalformedGeometry = errors.New("geo: malformed geometry")

// RawGeometry is the GeoJSON geometry envelope.
type RawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is a GeoJSON feature with untyped properties.
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties json.RawMessage `json:"properties"`
	Geometry   RawGeometry     `json:"geometry"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// DecodeGeometry decodes a Polygon or MultiPolygon into a Geometry with a
// derived bounding box.
func DecodeGeometry(raw RawGeometry) (Geometry, error) {
	switch raw.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return Geometry{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		poly, err := decodePolygon(coords)
		if err != nil {
			return Geometry{}, err
		}
		return NewGeometry(MultiPolygon{poly}), nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return Geometry{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		var multi MultiPolygon
		for _, pc := range coords {
			poly, err := decodePolygon(pc)
			if err != nil {
				return Geometry{}, err
			}
			multi = append(multi, poly)
		}
		if len(multi) == 0 {
			return Geometry{}, ErrMalformedGeometry
		}
		return NewGeometry(multi), nil
	default:
		return Geometry{}, fmt.Errorf("%w: unsupported type %q", ErrMalformedGeometry, raw.Type)
	}
}

// DecodePoint decodes a Point geometry, or the vertex-mean centroid of a
// Polygon/MultiPolygon outer ring.
func DecodePoint(raw RawGeometry) (Point, error) {
	switch raw.Type {
	case "Point":
		var coords []float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil || len(coords) < 2 {
			return Point{}, ErrMalformedGeometry
		}
		return Point{Lon: coords[0], Lat: coords[1]}, nil
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil || len(coords) == 0 {
			return Point{}, ErrMalformedGeometry
		}
		ring, err := decodeRing(coords[0])
		if err != nil {
			return Point{}, err
		}
		return Centroid(ring), nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil || len(coords) == 0 || len(coords[0]) == 0 {
			return Point{}, ErrMalformedGeometry
		}
		ring, err := decodeRing(coords[0][0])
		if err != nil {
			return Point{}, err
		}
		return Centroid(ring), nil
	default:
		return Point{}, fmt.Errorf("%w: unsupported type %q", ErrMalformedGeometry, raw.Type)
	}
}

func decodePolygon(coords [][][]float64) (Polygon, error) {
	if len(coords) == 0 {
		return Polygon{}, ErrMalformedGeometry
	}
	outer, err := decodeRing(coords[0])
	if err != nil {
		return Polygon{}, err
	}
	poly := Polygon{Outer: outer}
	for _, hc := range coords[1:] {
		hole, err := decodeRing(hc)
		if err != nil {
			return Polygon{}, err
		}
		poly.Holes = append(poly.Holes, hole)
	}
	return poly, nil
}

func decodeRing(coords [][]float64) (Ring, error) {
	if len(coords) < 3 {
		return nil, ErrMalformedGeometry
	}
	ring := make(Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, ErrMalformedGeometry
		}
		ring = append(ring, Point{Lon: c[0], Lat: c[1]})
	}
	return ring, nil
}
