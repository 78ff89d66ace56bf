// Package spatial holds the generic assignment algorithms shared by the
// district analyzer and the grid load estimator: exclusive polygon claiming
// and nearest-candidate matching with a distance cutoff.
package spatial

import "grid-atlas/internal/geo"

// Region is anything with a containment test. The geo.Geometry type satisfies
// it; tests may supply stubs.
type Region interface {
	Contains(p geo.Point) bool
}

// ExclusiveResult is the outcome of AssignExclusive. It is a plain value so
// repeated runs stay independent; no pool state lives outside it.
type ExclusiveResult struct {
	// ByRegion maps region index to the point indices it claimed, in point
	// input order.
	ByRegion map[int][]int
	// Consumed holds every claimed point index.
	Consumed map[int]struct{}
	// Unassigned counts points no region claimed. They are excluded from all
	// downstream aggregates; the count is surfaced for observability.
	Unassigned int
}

// AssignExclusive iterates regions in input order and lets each claim the
// not-yet-consumed points it contains. A point belongs to at most one region;
// the first region containing it wins. Deterministic for stable input order.
func AssignExclusive(points []geo.Point, regions []Region) ExclusiveResult {
	result := ExclusiveResult{
		ByRegion: make(map[int][]int, len(regions)),
		Consumed: make(map[int]struct{}, len(points)),
	}
	for ri, region := range regions {
		if region == nil {
			continue
		}
		for pi, p := range points {
			if _, taken := result.Consumed[pi]; taken {
				continue
			}
			if region.Contains(p) {
				result.ByRegion[ri] = append(result.ByRegion[ri], pi)
				result.Consumed[pi] = struct{}{}
			}
		}
	}
	result.Unassigned = len(points) - len(result.Consumed)
	return result
}

// NearestResult is the outcome of AssignNearest.
type NearestResult struct {
	// Candidate maps point index to the index of its matched candidate.
	// Points beyond the cutoff (or with no candidates) are absent.
	Candidate map[int]int
	// Unassigned counts points without a match.
	Unassigned int
}

// AssignNearest matches each point to its minimum-distance candidate, provided
// that distance does not exceed maxKm. Ties keep the first-encountered
// candidate, so output is stable for a stable candidate order.
func AssignNearest(points []geo.Point, candidates []geo.Point, maxKm float64) NearestResult {
	result := NearestResult{Candidate: make(map[int]int, len(points))}
	for pi, p := range points {
		best := -1
		bestDist := 0.0
		for ci, c := range candidates {
			d := geo.Distance(p.Lat, p.Lon, c.Lat, c.Lon)
			if best == -1 || d < bestDist {
				best = ci
				bestDist = d
			}
		}
		if best >= 0 && bestDist <= maxKm {
			result.Candidate[pi] = best
		}
	}
	result.Unassigned = len(points) - len(result.Candidate)
	return result
}
