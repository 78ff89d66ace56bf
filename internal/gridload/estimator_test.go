package gridload

import (
	"context"
	"errors"
	"math"
	"testing"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/regions"
	"grid-atlas/internal/telemetry"
)

type stubProvider struct {
	sample  telemetry.GenerationSample
	flows   map[string]telemetry.Flow
	genErr  error
	flowErr error
}

func (s *stubProvider) Generation(context.Context) (telemetry.GenerationSample, error) {
	return s.sample, s.genErr
}

func (s *stubProvider) CrossBorderFlows(context.Context) (map[string]telemetry.Flow, error) {
	return s.flows, s.flowErr
}

func testInputs() Inputs {
	return Inputs{
		Substations: []Record{
			{ID: "sub-hv", Name: "UW Wien Südost", Lat: 48.15, Lon: 16.45, VoltageKV: 380},
			{ID: "sub-mv", Name: "UW Graz Süd", Lat: 47.02, Lon: 15.45, VoltageKV: 110},
		},
		PlantSources: []catalog.SourceList{{
			Name: "registry",
			Records: []catalog.SourceRecord{
				// 100 MW wind park ~20 km from the HV node.
				{ID: "wp-1", Name: "Windpark Parndorf", Label: "Wind Onshore", CapacityMW: 100, Lat: 48.00, Lon: 16.60},
				// 10 MW solar park next to the MV node.
				{ID: "pv-1", Name: "Solarpark Graz", Label: "Solar", CapacityMW: 10, Lat: 47.05, Lon: 15.40},
			},
		}},
	}
}

func TestRunAssignsAndCalibrates(t *testing.T) {
	provider := &stubProvider{
		sample: telemetry.GenerationSample{ByType: map[string]float64{
			"Wind Onshore": 50,
			"Solar":        0.5,
		}},
	}
	e := NewEstimator(provider, nil)
	report := e.Run(context.Background(), testInputs())

	if report.Degraded {
		t.Fatal("run should not be degraded with a live provider")
	}
	if report.Summary.AssignedPlants != 2 || report.Summary.UnassignedPlants != 0 {
		t.Fatalf("assigned/unassigned = %d/%d, want 2/0",
			report.Summary.AssignedPlants, report.Summary.UnassignedPlants)
	}

	byID := make(map[string]SubstationLoad)
	for _, s := range report.Substations {
		byID[s.ID] = s
	}
	// Wind: sample 50 over catalog capacity 100 calibrates to 0.5.
	if got := byID["sub-hv"].GenerationMW; math.Abs(got-50) > 1e-6 {
		t.Fatalf("HV generation = %v, want 50", got)
	}
	// Solar: sample 0.5 over capacity 10 calibrates to 0.05.
	if got := byID["sub-mv"].GenerationMW; math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("MV generation = %v, want 0.5", got)
	}
	if f := report.UtilizationFactors[catalog.Wind]; math.Abs(f-0.5) > 1e-9 {
		t.Fatalf("wind utilization = %v, want 0.5", f)
	}
}

func TestRunLargePlantNeedsHVNode(t *testing.T) {
	// Only an MV node exists; the 100 MW plant next to it must stay
	// unassigned and contribute no generation anywhere.
	in := Inputs{
		Substations: []Record{
			{ID: "sub-mv", Name: "UW Graz Süd", Lat: 47.02, Lon: 15.45, VoltageKV: 110},
		},
		PlantSources: []catalog.SourceList{{
			Name: "registry",
			Records: []catalog.SourceRecord{
				{ID: "wp-1", Name: "Windpark Test", Label: "Wind Onshore", CapacityMW: 100, Lat: 47.03, Lon: 15.46},
			},
		}},
	}
	e := NewEstimator(nil, nil)
	report := e.Run(context.Background(), in)

	if report.Summary.UnassignedPlants != 1 {
		t.Fatalf("unassigned = %d, want 1", report.Summary.UnassignedPlants)
	}
	if report.Substations[0].GenerationMW != 0 {
		t.Fatalf("generation = %v, want 0", report.Substations[0].GenerationMW)
	}
	if report.Substations[0].PlantCount != 0 {
		t.Fatalf("plant count = %d, want 0", report.Substations[0].PlantCount)
	}
}

func TestRunDegradedFallbackLoad(t *testing.T) {
	e := NewEstimator(nil, nil)
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "sub-hv", Name: "UW Wien Südost", Lat: 48.15, Lon: 16.45, VoltageKV: 380},
		},
	})

	if !report.Degraded {
		t.Fatal("nil provider must mark the run degraded")
	}
	// A single substation carries the whole fallback load.
	if got := report.Substations[0].LoadMW; math.Abs(got-FallbackLoadMW) > 1e-6 {
		t.Fatalf("load = %v, want fallback %v", got, FallbackLoadMW)
	}
}

func TestRunTelemetryErrorDegrades(t *testing.T) {
	provider := &stubProvider{genErr: errors.New("bridge unreachable")}
	e := NewEstimator(provider, nil, WithFallbackLoadMW(5000))
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "sub-hv", Name: "UW Wien Südost", Lat: 48.15, Lon: 16.45, VoltageKV: 380},
		},
	})

	if !report.Degraded {
		t.Fatal("generation error must mark the run degraded")
	}
	if got := report.Substations[0].LoadMW; math.Abs(got-5000) > 1e-6 {
		t.Fatalf("load = %v, want configured fallback 5000", got)
	}
}

func TestRunLoadDistributionWeights(t *testing.T) {
	// Same voltage tier, regional factors 3:1 fixed via the override.
	e := NewEstimator(nil, nil, WithLoadFactor(func(lat, _ float64) float64 {
		if lat > 48 {
			return 3
		}
		return 1
	}))
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "north", Name: "UW Nord", Lat: 48.3, Lon: 16.3, VoltageKV: 110},
			{ID: "south", Name: "UW Süd", Lat: 47.0, Lon: 15.4, VoltageKV: 110},
		},
	})

	byID := make(map[string]SubstationLoad)
	for _, s := range report.Substations {
		byID[s.ID] = s
	}
	if got := byID["north"].LoadMW; math.Abs(got-5250) > 1e-6 {
		t.Fatalf("north load = %v, want 5250", got)
	}
	if got := byID["south"].LoadMW; math.Abs(got-1750) > 1e-6 {
		t.Fatalf("south load = %v, want 1750", got)
	}
}

func TestRunCrossBorderInjection(t *testing.T) {
	provider := &stubProvider{
		sample: telemetry.GenerationSample{ByType: map[string]float64{"Wind Onshore": 1000}},
		flows: map[string]telemetry.Flow{
			"DE": {ImportMW: 500, ExportMW: 100},
		},
	}
	box := regions.BorderBox{MinLat: 48.0, MaxLat: 48.5, MinLon: 16.0, MaxLon: 17.0}
	e := NewEstimator(provider, nil, WithBorderBoxes(map[string]regions.BorderBox{"DE": box}))
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "border", Name: "UW Grenze", Lat: 48.2, Lon: 16.4, VoltageKV: 380},
		},
	})

	sub := report.Substations[0]
	if math.Abs(sub.CrossborderMW-400) > 1e-6 {
		t.Fatalf("crossborder = %v, want net 400", sub.CrossborderMW)
	}
	// Total load = generation sample (1000) + net imports (400).
	if math.Abs(sub.LoadMW-1400) > 1e-6 {
		t.Fatalf("load = %v, want 1400", sub.LoadMW)
	}
	// Net flow −1000 against 2000 MVA × 0.9: just over the medium threshold.
	if math.Abs(sub.NetFlowMW-(-1000)) > 1e-6 {
		t.Fatalf("net flow = %v, want -1000", sub.NetFlowMW)
	}
	wantPercent := 1000.0 / 1800.0 * 100
	if math.Abs(sub.LoadPercent-wantPercent) > 1e-6 {
		t.Fatalf("load percent = %v, want %v", sub.LoadPercent, wantPercent)
	}
	if sub.Status != "medium" {
		t.Fatalf("status = %q, want medium", sub.Status)
	}
}

func TestRunCrossBorderSkipsMVNodes(t *testing.T) {
	provider := &stubProvider{
		sample: telemetry.GenerationSample{ByType: map[string]float64{"Wind Onshore": 1000}},
		flows: map[string]telemetry.Flow{
			"CZ": {ImportMW: 300},
		},
	}
	box := regions.BorderBox{MinLat: 48.0, MaxLat: 49.0, MinLon: 14.0, MaxLon: 17.0}
	e := NewEstimator(provider, nil, WithBorderBoxes(map[string]regions.BorderBox{"CZ": box}))
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "mv-only", Name: "UW Weinviertel", Lat: 48.5, Lon: 16.3, VoltageKV: 110},
		},
	})

	if got := report.Substations[0].CrossborderMW; got != 0 {
		t.Fatalf("MV node must not receive cross-border flow, got %v", got)
	}
}

func TestLoadPercentCapped(t *testing.T) {
	provider := &stubProvider{
		sample: telemetry.GenerationSample{ByType: map[string]float64{"Wind Onshore": 12000}},
	}
	e := NewEstimator(provider, nil)
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			// 110 kV: 300 MVA × 0.9 = 270 MW reference, wildly exceeded.
			{ID: "tiny", Name: "UW Klein", Lat: 48.3, Lon: 16.3, VoltageKV: 110},
		},
	})

	sub := report.Substations[0]
	if sub.LoadPercent != maxLoadPercent {
		t.Fatalf("load percent = %v, want cap %v", sub.LoadPercent, maxLoadPercent)
	}
	if sub.Status != "high" {
		t.Fatalf("status = %q, want high", sub.Status)
	}
}

func TestStatusThresholdsExclusive(t *testing.T) {
	cases := []struct {
		percent float64
		want    string
	}{
		{150, "high"},
		{80.1, "high"},
		{80, "medium"},
		{50.1, "medium"},
		{50, "low"},
		{0, "low"},
	}
	for _, tc := range cases {
		if got := statusFor(tc.percent); got != tc.want {
			t.Errorf("statusFor(%v) = %q, want %q", tc.percent, got, tc.want)
		}
	}
}

func TestTopPlantsLimitedAndSorted(t *testing.T) {
	records := make([]catalog.SourceRecord, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, catalog.SourceRecord{
			ID:         string(rune('a' + i)),
			Name:       "WP",
			Label:      "Wind Onshore",
			CapacityMW: float64(60 + i*10),
			// Spread cells so dedup keeps all eight.
			Lat: 48.0 + float64(i)*0.01,
			Lon: 16.4,
		})
	}
	e := NewEstimator(nil, nil)
	report := e.Run(context.Background(), Inputs{
		Substations: []Record{
			{ID: "hv", Name: "UW Test", Lat: 48.03, Lon: 16.4, VoltageKV: 380},
		},
		PlantSources: []catalog.SourceList{{Name: "registry", Records: records}},
	})

	sub := report.Substations[0]
	if sub.PlantCount != 8 {
		t.Fatalf("plant count = %d, want 8", sub.PlantCount)
	}
	if len(sub.ConnectedPlants) != topPlantsPerSubstation {
		t.Fatalf("connected plants = %d, want %d", len(sub.ConnectedPlants), topPlantsPerSubstation)
	}
	for i := 1; i < len(sub.ConnectedPlants); i++ {
		if sub.ConnectedPlants[i].ProductionMW > sub.ConnectedPlants[i-1].ProductionMW {
			t.Fatal("connected plants must be sorted by production, descending")
		}
	}
}

func TestConnectedPlantsOrderReproducible(t *testing.T) {
	// Equal-capacity plants tie on production; their report order must come
	// from the input order, identically on every run.
	records := make([]catalog.SourceRecord, 0, 6)
	for i := 0; i < 6; i++ {
		records = append(records, catalog.SourceRecord{
			ID:         string(rune('a' + i)),
			Name:       "WP " + string(rune('A'+i)),
			Label:      "Wind Onshore",
			CapacityMW: 80,
			Lat:        48.0 + float64(i)*0.01,
			Lon:        16.4,
		})
	}
	inputs := Inputs{
		Substations: []Record{
			{ID: "hv", Name: "UW Test", Lat: 48.02, Lon: 16.4, VoltageKV: 380},
		},
		PlantSources: []catalog.SourceList{{Name: "registry", Records: records}},
	}
	e := NewEstimator(nil, nil)

	first := e.Run(context.Background(), inputs).Substations[0].ConnectedPlants
	for run := 0; run < 20; run++ {
		again := e.Run(context.Background(), inputs).Substations[0].ConnectedPlants
		if len(again) != len(first) {
			t.Fatalf("connected plants length changed: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if again[i].Name != first[i].Name {
				t.Fatalf("run %d: plant order changed at %d: %q vs %q", run, i, again[i].Name, first[i].Name)
			}
		}
	}
}
