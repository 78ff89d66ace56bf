package gridload

import (
	"math"
	"testing"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/telemetry"
)

func TestCalibrationFactorsFromSample(t *testing.T) {
	capacity := map[catalog.Category]float64{catalog.Wind: 1000}
	sample := map[catalog.Category]float64{catalog.Wind: 500}

	factors := CalibrationFactors(capacity, sample, catalog.DefaultUtilization)
	if factors[catalog.Wind] != 0.5 {
		t.Fatalf("wind factor = %v, want 0.5", factors[catalog.Wind])
	}
}

func TestCalibrationFactorsCapped(t *testing.T) {
	capacity := map[catalog.Category]float64{catalog.Gas: 100}
	sample := map[catalog.Category]float64{catalog.Gas: 500}

	factors := CalibrationFactors(capacity, sample, catalog.DefaultUtilization)
	if factors[catalog.Gas] != maxUtilization {
		t.Fatalf("gas factor = %v, want cap %v", factors[catalog.Gas], maxUtilization)
	}
}

func TestCalibrationFactorsDefaultsOffSample(t *testing.T) {
	capacity := map[catalog.Category]float64{catalog.Solar: 800, catalog.Biomass: 50}
	factors := CalibrationFactors(capacity, nil, catalog.DefaultUtilization)

	if factors[catalog.Solar] != catalog.DefaultUtilization[catalog.Solar] {
		t.Fatalf("solar should use default, got %v", factors[catalog.Solar])
	}
	if factors[catalog.Biomass] != catalog.DefaultUtilization[catalog.Biomass] {
		t.Fatalf("biomass should use default, got %v", factors[catalog.Biomass])
	}
	if factors[catalog.Solar] >= factors[catalog.Biomass] {
		t.Fatal("solar default should sit well below the biomass baseload default")
	}
}

func TestCalibrationFactorsZeroCapacityGuard(t *testing.T) {
	// A sampled category with no catalog capacity must not divide by zero.
	sample := map[catalog.Category]float64{catalog.Geothermal: 12}
	factors := CalibrationFactors(nil, sample, catalog.DefaultUtilization)
	if math.IsNaN(factors[catalog.Geothermal]) || math.IsInf(factors[catalog.Geothermal], 0) {
		t.Fatalf("degenerate division: %v", factors[catalog.Geothermal])
	}
}

func TestApplyProductionReconciles(t *testing.T) {
	// Catalog capacity 1000 MW across three plants, sample says 500 MW.
	plants := []*catalog.PowerPlant{
		{Name: "W1", Category: catalog.Wind, CapacityMW: 500},
		{Name: "W2", Category: catalog.Wind, CapacityMW: 300},
		{Name: "W3", Category: catalog.Wind, CapacityMW: 200},
	}
	sample := map[catalog.Category]float64{catalog.Wind: 500}
	factors := CalibrationFactors(catalog.CapacityByCategory(plants), sample, catalog.DefaultUtilization)
	ApplyProduction(plants, factors, sample)

	var total float64
	for _, p := range plants {
		total += p.ProductionMW
		if math.Abs(p.UtilizationFactor-0.5) > 1e-9 {
			t.Fatalf("%s utilization = %v, want 0.5", p.Name, p.UtilizationFactor)
		}
	}
	if math.Abs(total-500) > 500*0.01 {
		t.Fatalf("aggregate %v deviates more than 1%% from sample 500", total)
	}
}

func TestApplyProductionSecondPassCorrection(t *testing.T) {
	// Sample exceeds nameplate, so the raw factor hits the cap and the first
	// pass undershoots. The second pass must pull the aggregate back onto the
	// sample.
	plants := []*catalog.PowerPlant{
		{Name: "B1", Category: catalog.Biomass, CapacityMW: 100},
		{Name: "B2", Category: catalog.Biomass, CapacityMW: 100},
	}
	sample := map[catalog.Category]float64{catalog.Biomass: 250}
	factors := CalibrationFactors(catalog.CapacityByCategory(plants), sample, catalog.DefaultUtilization)
	if factors[catalog.Biomass] != maxUtilization {
		t.Fatalf("factor %v, want the cap %v", factors[catalog.Biomass], maxUtilization)
	}
	ApplyProduction(plants, factors, sample)

	var total float64
	for _, p := range plants {
		total += p.ProductionMW
	}
	if math.Abs(total-250) > 1e-6 {
		t.Fatalf("aggregate %v, want the sample 250", total)
	}
}

func TestApplyProductionSkipsWithinTolerance(t *testing.T) {
	plants := []*catalog.PowerPlant{{Name: "G1", Category: catalog.Gas, CapacityMW: 1000}}
	// Sample within 1% of modeled production at the raw factor.
	sample := map[catalog.Category]float64{catalog.Gas: 500}
	factors := map[catalog.Category]float64{catalog.Gas: 0.5005}
	ApplyProduction(plants, factors, sample)

	// 500.5 deviates 0.1% from 500: no correction, raw value stands.
	if math.Abs(plants[0].ProductionMW-500.5) > 1e-9 {
		t.Fatalf("production = %v, want untouched 500.5", plants[0].ProductionMW)
	}
}

func TestSampleByCategoryFoldsLabels(t *testing.T) {
	sample := telemetry.GenerationSample{ByType: map[string]float64{
		"Wind Onshore":             300,
		"Wind Offshore":            50,
		"Wasserkraft (Laufwasser)": 1000,
	}}
	byCat := SampleByCategory(sample)
	if byCat[catalog.Wind] != 350 {
		t.Fatalf("wind = %v, want 350", byCat[catalog.Wind])
	}
	if byCat[catalog.HydroRunOfRiver] != 1000 {
		t.Fatalf("hydro = %v, want 1000", byCat[catalog.HydroRunOfRiver])
	}
}
