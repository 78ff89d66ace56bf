package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BBox) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Extend grows the box to cover the point.
func (b BBox) Extend(p Point) BBox {
	if p.Lon < b.MinLon {
		b.MinLon = p.Lon
	}
	if p.Lon > b.MaxLon {
		b.MaxLon = p.Lon
	}
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	return b
}

func emptyBBox() BBox {
	return BBox{
		MinLon: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLon: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
}

// Ring is a closed sequence of points. The closing point may be repeated or
// omitted; containment treats the ring as implicitly closed.
type Ring []Point

// Polygon is an outer ring plus zero or more holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// MultiPolygon is a set of polygons treated as one region.
type MultiPolygon []Polygon

// Geometry is a polygon or multipolygon with a precomputed bounding box.
type Geometry struct {
	Polygons MultiPolygon
	Bounds   BBox
}

// NewGeometry builds a Geometry and derives its bounding box.
func NewGeometry(polygons MultiPolygon) Geometry {
	box := emptyBBox()
	for _, poly := range polygons {
		for _, p := range poly.Outer {
			box = box.Extend(p)
		}
	}
	return Geometry{Polygons: polygons, Bounds: box}
}

// Contains tests exact containment, preceded by a bounding-box rejection.
//
// Boundary policy: even-odd ray casting with half-open edge intervals. A point
// exactly on an edge is not guaranteed to test inside; which side it lands on
// depends on edge orientation. Callers must not rely on boundary inclusion.
func (g Geometry) Contains(p Point) bool {
	if !g.Bounds.Contains(p) {
		return false
	}
	for _, poly := range g.Polygons {
		if polygonContains(poly, p) {
			return true
		}
	}
	return false
}

func polygonContains(poly Polygon, p Point) bool {
	if !ringContains(poly.Outer, p) {
		return false
	}
	for _, hole := range poly.Holes {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains implements the even-odd rule with a horizontal ray.
func ringContains(ring Ring, p Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			cross := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Distance returns the great-circle distance in km via the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180
	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// Centroid returns the arithmetic mean of the ring's vertices. It is the
// nameplate centroid used for polygon assets, not an area-weighted centroid.
func Centroid(ring Ring) Point {
	if len(ring) == 0 {
		return Point{}
	}
	var lat, lon float64
	for _, p := range ring {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(ring))
	return Point{Lat: lat / n, Lon: lon / n}
}
