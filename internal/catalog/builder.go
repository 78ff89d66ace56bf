package catalog

import (
	"fmt"
	"math"

	"grid-atlas/internal/geo"
)

func pointOf(lat, lon float64) geo.Point { return geo.Point{Lat: lat, Lon: lon} }

// cellKey buckets a coordinate into the dedup grid: 3 decimal degrees,
// roughly 100 m. Two source records in the same cell describe one plant.
func cellKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f|%.3f", math.Round(lat*1000)/1000, math.Round(lon*1000)/1000)
}

// PreferIncoming is the priority-merge comparator: an incoming record
// replaces the existing one only when it carries a more specific category, or
// the same specificity with a strictly larger capacity. The induced order is
// total enough that the surviving record for a cell does not depend on the
// order the sources were processed in.
func PreferIncoming(existing, incoming *PowerPlant) bool {
	es, is := Specificity(existing.Category), Specificity(incoming.Category)
	if is != es {
		return is > es
	}
	return incoming.CapacityMW > existing.CapacityMW
}

// BuildCatalog normalizes the source lists into canonical plants. Records
// with bad coordinates or non-positive capacity are skipped individually.
// Output order is reproducible: cells appear in first-seen order, and a merge
// keeps the cell's position.
func BuildCatalog(sources []SourceList) []*PowerPlant {
	byCell := make(map[string]*PowerPlant)
	var order []string

	for _, src := range sources {
		for _, rec := range src.Records {
			plant, ok := normalize(src.Name, rec)
			if !ok {
				continue
			}
			key := cellKey(rec.Lat, rec.Lon)
			existing, seen := byCell[key]
			if !seen {
				byCell[key] = plant
				order = append(order, key)
				continue
			}
			if PreferIncoming(existing, plant) {
				byCell[key] = plant
			}
		}
	}

	plants := make([]*PowerPlant, 0, len(order))
	for _, key := range order {
		plants = append(plants, byCell[key])
	}
	return plants
}

func normalize(source string, rec SourceRecord) (*PowerPlant, bool) {
	if !validCoordinate(rec.Lat, rec.Lon) {
		return nil, false
	}
	if rec.CapacityMW <= 0 || math.IsNaN(rec.CapacityMW) || math.IsInf(rec.CapacityMW, 0) {
		return nil, false
	}
	id := rec.ID
	if id == "" {
		id = fmt.Sprintf("%s:%s", source, cellKey(rec.Lat, rec.Lon))
	}
	name := rec.Name
	if name == "" {
		name = "Unknown"
	}
	return &PowerPlant{
		ID:         id,
		Name:       name,
		Category:   CategoryFromLabel(rec.Label),
		Location:   pointOf(rec.Lat, rec.Lon),
		Operator:   rec.Operator,
		CapacityMW: rec.CapacityMW,
	}, true
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CapacityByCategory sums nameplate capacity per category.
func CapacityByCategory(plants []*PowerPlant) map[Category]float64 {
	totals := make(map[Category]float64)
	for _, p := range plants {
		totals[p.Category] += p.CapacityMW
	}
	return totals
}
