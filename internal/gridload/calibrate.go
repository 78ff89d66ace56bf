package gridload

import (
	"math"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/telemetry"
)

// maxUtilization caps the raw calibration factor. Slightly above 1 because
// telemetry and catalog nameplate figures disagree by a few percent.
const maxUtilization = 1.05

// reconcileTolerance is the relative deviation under which the second pass
// leaves productions untouched, avoiding floating-point churn.
const reconcileTolerance = 0.01

// SampleByCategory folds the telemetry sample onto the enumerated categories
// using the catalog label table.
func SampleByCategory(sample telemetry.GenerationSample) map[catalog.Category]float64 {
	byCat := make(map[catalog.Category]float64)
	for label, mw := range sample.ByType {
		byCat[catalog.CategoryFromLabel(label)] += mw
	}
	return byCat
}

// CalibrationFactors derives per-category utilization factors. Categories
// present in the sample with positive catalog capacity get
// min(sample/capacity, maxUtilization); all others fall back to the default
// table (overridable via config).
func CalibrationFactors(capacity map[catalog.Category]float64, sampleByCat map[catalog.Category]float64, defaults map[catalog.Category]float64) map[catalog.Category]float64 {
	factors := make(map[catalog.Category]float64, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		sampleMW, sampled := sampleByCat[cat]
		capMW := capacity[cat]
		if sampled && capMW > 0 {
			factors[cat] = math.Min(sampleMW/capMW, maxUtilization)
			continue
		}
		if def, ok := defaults[cat]; ok {
			factors[cat] = def
		} else {
			factors[cat] = catalog.DefaultUtilization[cat]
		}
	}
	return factors
}

// ApplyProduction runs the two-stage calibration in one place so the
// correction can never be applied twice.
//
// Precondition: factors come from CalibrationFactors for the same plant set;
// plant productions are untouched (rebuilt fresh each run).
// Postcondition: every plant has production = capacity × utilization, and for
// each sampled category whose modeled aggregate deviated from the sample by
// more than reconcileTolerance, the aggregate equals the sample exactly
// (secondary multiplicative correction); within tolerance the raw factors
// stand.
func ApplyProduction(plants []*catalog.PowerPlant, factors map[catalog.Category]float64, sampleByCat map[catalog.Category]float64) {
	aggregate := make(map[catalog.Category]float64)
	for _, p := range plants {
		factor := factors[p.Category]
		p.UtilizationFactor = factor
		p.ProductionMW = p.CapacityMW * factor
		aggregate[p.Category] += p.ProductionMW
	}

	for cat, sampleMW := range sampleByCat {
		modeled := aggregate[cat]
		if modeled <= 0 || sampleMW <= 0 {
			continue
		}
		deviation := math.Abs(modeled-sampleMW) / sampleMW
		if deviation <= reconcileTolerance {
			continue
		}
		correction := sampleMW / modeled
		for _, p := range plants {
			if p.Category != cat {
				continue
			}
			p.ProductionMW *= correction
			p.UtilizationFactor *= correction
		}
	}
}
