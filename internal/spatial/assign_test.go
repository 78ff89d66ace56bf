package spatial

import (
	"testing"

	"grid-atlas/internal/geo"
)

func square(minLat, minLon, maxLat, maxLon float64) geo.Geometry {
	return geo.NewGeometry(geo.MultiPolygon{{
		Outer: geo.Ring{
			{Lat: minLat, Lon: minLon},
			{Lat: minLat, Lon: maxLon},
			{Lat: maxLat, Lon: maxLon},
			{Lat: maxLat, Lon: minLon},
			{Lat: minLat, Lon: minLon},
		},
	}})
}

func TestAssignExclusiveFirstRegionWins(t *testing.T) {
	// Two overlapping regions; the point sits in both.
	a := square(0, 0, 10, 10)
	b := square(0, 0, 20, 20)
	points := []geo.Point{{Lat: 5, Lon: 5}, {Lat: 15, Lon: 15}, {Lat: 50, Lon: 50}}

	result := AssignExclusive(points, []Region{a, b})

	if got := result.ByRegion[0]; len(got) != 1 || got[0] != 0 {
		t.Fatalf("region 0 claims %v, want [0]", got)
	}
	if got := result.ByRegion[1]; len(got) != 1 || got[0] != 1 {
		t.Fatalf("region 1 claims %v, want [1]", got)
	}
	if result.Unassigned != 1 {
		t.Fatalf("unassigned = %d, want 1", result.Unassigned)
	}
}

func TestAssignExclusiveConsumedAtMostOnce(t *testing.T) {
	region := square(0, 0, 10, 10)
	points := []geo.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}}

	result := AssignExclusive(points, []Region{region, region, region})

	total := 0
	for _, claimed := range result.ByRegion {
		total += len(claimed)
	}
	if total != len(result.Consumed) {
		t.Fatalf("claimed %d but consumed %d", total, len(result.Consumed))
	}
	if total > len(points) {
		t.Fatalf("claimed %d points out of %d", total, len(points))
	}
	// All three land in the first copy of the region.
	if len(result.ByRegion[0]) != 3 || len(result.ByRegion[1]) != 0 {
		t.Fatalf("exclusion pool leaked: %v", result.ByRegion)
	}
}

func TestAssignExclusiveNilRegion(t *testing.T) {
	points := []geo.Point{{Lat: 1, Lon: 1}}
	result := AssignExclusive(points, []Region{nil})
	if result.Unassigned != 1 {
		t.Fatalf("unassigned = %d, want 1", result.Unassigned)
	}
}

func TestAssignNearestCutoff(t *testing.T) {
	points := []geo.Point{{Lat: 48.0, Lon: 16.0}}
	candidates := []geo.Point{{Lat: 48.0, Lon: 16.2}, {Lat: 48.0, Lon: 18.0}}

	near := AssignNearest(points, candidates, 30)
	if ci, ok := near.Candidate[0]; !ok || ci != 0 {
		t.Fatalf("expected candidate 0, got %v (ok=%v)", ci, ok)
	}

	far := AssignNearest(points, candidates, 5)
	if _, ok := far.Candidate[0]; ok {
		t.Fatal("expected no match beyond cutoff")
	}
	if far.Unassigned != 1 {
		t.Fatalf("unassigned = %d, want 1", far.Unassigned)
	}
}

func TestAssignNearestTieKeepsFirst(t *testing.T) {
	points := []geo.Point{{Lat: 48.0, Lon: 16.0}}
	// Equidistant candidates east and west.
	candidates := []geo.Point{{Lat: 48.0, Lon: 16.1}, {Lat: 48.0, Lon: 15.9}}

	result := AssignNearest(points, candidates, 30)
	if ci := result.Candidate[0]; ci != 0 {
		t.Fatalf("tie should keep first candidate, got %d", ci)
	}
}

func TestAssignNearestNoCandidates(t *testing.T) {
	result := AssignNearest([]geo.Point{{Lat: 1, Lon: 1}}, nil, 100)
	if result.Unassigned != 1 {
		t.Fatalf("unassigned = %d, want 1", result.Unassigned)
	}
}
