// Package district scores administrative districts for remaining
// interconnection headroom by spatially bucketing windparks and transformer
// stations into district polygons.
package district

import (
	"math"

	"grid-atlas/internal/geo"
	"grid-atlas/internal/spatial"
)

// District is one administrative district with its polygon geometry.
type District struct {
	Name     string
	ISO      string
	Geometry geo.Geometry
}

// WindPark is an aggregated turbine group treated as one capacity entity.
type WindPark struct {
	Location geo.Point
	TotalMW  float64
	Turbines int
}

// Transformer is a registry transformer station with booked and officially
// available interconnection capacity.
type Transformer struct {
	Location    geo.Point
	BookedMW    float64
	AvailableMW float64
}

// Report is the per-district capacity analysis.
type Report struct {
	Name                 string     `json:"name"`
	ISO                  string     `json:"iso"`
	WindParks            int        `json:"windparks"`
	Turbines             int        `json:"turbines"`
	InstalledMW          float64    `json:"installed_mw"`
	Transformers         int        `json:"transformers"`
	BookedCapacityMW     float64    `json:"booked_capacity_mw"`
	OfficialAvailableMW  float64    `json:"official_available_mw"`
	EstimatedAvailableMW float64    `json:"estimated_available_mw"`
	CapacityScore        float64    `json:"capacity_score"`
	BBox                 [4]float64 `json:"bbox"`
}

// Result is the full analysis output: the report map plus the unassigned
// counts surfaced for observability. Unmatched points stay out of every
// aggregate.
type Result struct {
	Reports                map[string]Report `json:"districts"`
	UnassignedWindParks    int               `json:"unassigned_windparks"`
	UnassignedTransformers int               `json:"unassigned_transformers"`
}

// Compute buckets windparks and transformers into districts and scores each
// district. Districts claim points in input order; windparks and transformers
// are two independent exclusion pools.
func Compute(districts []District, windparks []WindPark, transformers []Transformer) Result {
	regions := make([]spatial.Region, len(districts))
	for i := range districts {
		regions[i] = districts[i].Geometry
	}

	wpPoints := make([]geo.Point, len(windparks))
	for i, wp := range windparks {
		wpPoints[i] = wp.Location
	}
	trPoints := make([]geo.Point, len(transformers))
	for i, tr := range transformers {
		trPoints[i] = tr.Location
	}

	wpMatch := spatial.AssignExclusive(wpPoints, regions)
	trMatch := spatial.AssignExclusive(trPoints, regions)

	reports := make(map[string]Report, len(districts))
	for di, d := range districts {
		var installed float64
		var turbines int
		for _, pi := range wpMatch.ByRegion[di] {
			installed += windparks[pi].TotalMW
			turbines += windparks[pi].Turbines
		}
		var booked, available float64
		for _, pi := range trMatch.ByRegion[di] {
			booked += transformers[pi].BookedMW
			available += transformers[pi].AvailableMW
		}

		bounds := d.Geometry.Bounds
		reports[d.ISO] = Report{
			Name:                 d.Name,
			ISO:                  d.ISO,
			WindParks:            len(wpMatch.ByRegion[di]),
			Turbines:             turbines,
			InstalledMW:          round2(installed),
			Transformers:         len(trMatch.ByRegion[di]),
			BookedCapacityMW:     round2(booked),
			OfficialAvailableMW:  round2(available),
			EstimatedAvailableMW: round2(estimatedAvailableMW(available, booked)),
			CapacityScore:        round1(capacityScore(installed, booked, available)),
			BBox:                 [4]float64{bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat},
		}
	}

	return Result{
		Reports:                reports,
		UnassignedWindParks:    wpMatch.Unassigned,
		UnassignedTransformers: trMatch.Unassigned,
	}
}

// capacityScore is the 0-100 headroom heuristic. Registered grid capacity
// yields the utilization-based score; wind with no registered capacity is
// treated as constrained (20); no signal at all is neutral (50).
func capacityScore(installedMW, bookedMW, availableMW float64) float64 {
	gridCapacity := bookedMW + availableMW
	switch {
	case gridCapacity > 0:
		utilization := math.Min(installedMW/(gridCapacity+0.01), 1.5)
		return clamp(0, 100, (1-utilization*0.7)*100)
	case installedMW > 0:
		return 20
	default:
		return 50
	}
}

// estimatedAvailableMW applies the optimistic-uplift policy: official figures
// are assumed conservative, so available capacity is scaled up and a slice of
// the booked capacity is counted as reclaimable.
func estimatedAvailableMW(availableMW, bookedMW float64) float64 {
	return availableMW*1.4 + bookedMW*0.15
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
