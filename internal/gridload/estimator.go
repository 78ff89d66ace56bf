// Package gridload estimates real-time load and flow at each substation by
// fusing asset catalogs, assigning plants to nearest grid nodes, and
// calibrating modeled production against the external aggregate-generation
// signal.
package gridload

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/geo"
	"grid-atlas/internal/regions"
	"grid-atlas/internal/spatial"
	"grid-atlas/internal/telemetry"
)

const (
	// Plant-to-substation assignment tiers.
	largePlantMW   = 50.0
	hvVoltageKV    = 220
	mvVoltageKV    = 110
	hvCutoffKm     = 50.0
	mvCutoffKm     = 30.0
	powerFactor    = 0.9
	maxLoadPercent = 150.0

	// FallbackLoadMW stands in for the national load when telemetry is down.
	FallbackLoadMW = 7000.0

	topPlantsPerSubstation = 5
)

// Estimator runs the substation load model. Each run rebuilds the object
// graph from scratch; an Estimator is safe for concurrent Run calls.
type Estimator struct {
	provider       telemetry.Provider
	logger         *zap.SugaredLogger
	fallbackLoadMW float64
	defaultFactors map[catalog.Category]float64
	loadFactor     func(lat, lon float64) float64
	borderBoxes    map[string]regions.BorderBox
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithFallbackLoadMW overrides the degraded-mode national load.
func WithFallbackLoadMW(mw float64) Option {
	return func(e *Estimator) {
		if mw > 0 {
			e.fallbackLoadMW = mw
		}
	}
}

// WithDefaultFactors overrides the off-sample utilization table.
func WithDefaultFactors(factors map[catalog.Category]float64) Option {
	return func(e *Estimator) {
		if len(factors) > 0 {
			e.defaultFactors = factors
		}
	}
}

// WithLoadFactor overrides the regional load factor lookup.
func WithLoadFactor(fn func(lat, lon float64) float64) Option {
	return func(e *Estimator) {
		if fn != nil {
			e.loadFactor = fn
		}
	}
}

// WithBorderBoxes overrides the per-country border bounding boxes.
func WithBorderBoxes(boxes map[string]regions.BorderBox) Option {
	return func(e *Estimator) {
		if len(boxes) > 0 {
			e.borderBoxes = boxes
		}
	}
}

// NewEstimator constructs an estimator. provider may be nil, in which case
// every run is degraded.
func NewEstimator(provider telemetry.Provider, logger *zap.SugaredLogger, opts ...Option) *Estimator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	e := &Estimator{
		provider:       provider,
		logger:         logger,
		fallbackLoadMW: FallbackLoadMW,
		defaultFactors: catalog.DefaultUtilization,
		loadFactor: func(lat, lon float64) float64 {
			return regions.LoadFactor(regions.Of(lat, lon))
		},
		borderBoxes: regions.BorderBoxes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Inputs are the static catalogs for one run.
type Inputs struct {
	// Substations holds the OSM-derived records; RegistryFallback the
	// transformer registry rows used to fill gaps.
	Substations      []Record
	RegistryFallback []Record
	// PlantSources feed the asset catalog builder in priority order.
	PlantSources []catalog.SourceList
}

// Run executes the model steps strictly in order and returns the report.
// Telemetry failure degrades to static defaults; it never aborts the run.
func (e *Estimator) Run(ctx context.Context, in Inputs) *Report {
	// 1. Build substations.
	subs := BuildSubstations(in.Substations, in.RegistryFallback)

	// 2. Build canonical plants.
	plants := catalog.BuildCatalog(in.PlantSources)

	// 3. Assign plants to substations.
	assigned := e.assignPlants(plants, subs)

	// Fetch telemetry once; both calibration and load distribution use it.
	sample, flows, degraded := e.fetchTelemetry(ctx)
	sampleByCat := SampleByCategory(sample)

	// 4-5. Calibrate utilization, then reconcile aggregates.
	factors := CalibrationFactors(catalog.CapacityByCategory(plants), sampleByCat, e.defaultFactors)
	ApplyProduction(plants, factors, sampleByCat)

	// 6. Aggregate generation per substation.
	for _, s := range subs {
		s.GenerationMW = 0
		for _, p := range s.Plants {
			s.GenerationMW += p.ProductionMW
		}
	}

	// 7. Distribute the national load.
	e.distributeLoad(subs, sample, flows)

	// 8. Inject cross-border flow at border substations.
	e.injectCrossBorder(subs, flows)

	// 9. Compute node state.
	for _, s := range subs {
		s.NetFlowMW = s.GenerationMW - s.LoadMW + s.CrossborderMW
		capacityMW := s.CapacityMVA * powerFactor
		if capacityMW > 0 {
			s.LoadPercent = math.Min(math.Abs(s.NetFlowMW)/capacityMW*100, maxLoadPercent)
		} else {
			s.LoadPercent = 0
		}
		s.Status = statusFor(s.LoadPercent)
	}

	report := buildReport(subs, plants, factors, assigned)
	report.Degraded = degraded
	e.logger.Infow("grid load run complete",
		"substations", len(subs),
		"plants", len(plants),
		"assigned", assigned,
		"degraded", degraded,
	)
	return report
}

// assignPlants matches plants to their nearest suitable substation: large
// plants to HV nodes within 50 km, the rest to ≥110 kV nodes within 30 km.
// Returns the number of assigned plants.
func (e *Estimator) assignPlants(plants []*catalog.PowerPlant, subs []*Substation) int {
	var hvSubs, mvSubs []*Substation
	var hvPoints, mvPoints []geo.Point
	for _, s := range subs {
		if s.VoltageKV >= hvVoltageKV {
			hvSubs = append(hvSubs, s)
			hvPoints = append(hvPoints, s.Location)
		}
		if s.VoltageKV >= mvVoltageKV {
			mvSubs = append(mvSubs, s)
			mvPoints = append(mvPoints, s.Location)
		}
	}

	var large, small []*catalog.PowerPlant
	var largePoints, smallPoints []geo.Point
	for _, p := range plants {
		if p.CapacityMW > largePlantMW {
			large = append(large, p)
			largePoints = append(largePoints, p.Location)
		} else {
			small = append(small, p)
			smallPoints = append(smallPoints, p.Location)
		}
	}

	// Walk point indices in input order so each substation's plant list, and
	// with it the report's tie ordering, is reproducible across runs.
	assigned := 0
	largeMatch := spatial.AssignNearest(largePoints, hvPoints, hvCutoffKm)
	for pi := range large {
		if ci, ok := largeMatch.Candidate[pi]; ok {
			hvSubs[ci].addPlant(large[pi])
			assigned++
		}
	}
	smallMatch := spatial.AssignNearest(smallPoints, mvPoints, mvCutoffKm)
	for pi := range small {
		if ci, ok := smallMatch.Candidate[pi]; ok {
			mvSubs[ci].addPlant(small[pi])
			assigned++
		}
	}
	return assigned
}

func (e *Estimator) fetchTelemetry(ctx context.Context) (telemetry.GenerationSample, map[string]telemetry.Flow, bool) {
	if e.provider == nil {
		return telemetry.GenerationSample{}, nil, true
	}
	degraded := false
	sample, err := e.provider.Generation(ctx)
	if err != nil {
		e.logger.Warnw("generation telemetry unavailable, using defaults", "error", err)
		sample = telemetry.GenerationSample{}
		degraded = true
	}
	flows, err := e.provider.CrossBorderFlows(ctx)
	if err != nil {
		e.logger.Warnw("cross-border telemetry unavailable", "error", err)
		flows = nil
	}
	return sample, flows, degraded || sample.Empty()
}

// distributeLoad spreads the national load across substations proportional
// to regional density and voltage tier.
func (e *Estimator) distributeLoad(subs []*Substation, sample telemetry.GenerationSample, flows map[string]telemetry.Flow) {
	totalLoad := e.fallbackLoadMW
	if !sample.Empty() {
		netImports := 0.0
		for _, f := range flows {
			netImports += f.NetMW()
		}
		totalLoad = sample.TotalMW() + netImports
	}

	totalWeight := 0.0
	for _, s := range subs {
		s.loadWeight = e.loadFactor(s.Location.Lat, s.Location.Lon) * float64(s.VoltageKV) / float64(mvVoltageKV)
		totalWeight += s.loadWeight
	}
	if totalWeight <= 1e-9 {
		return
	}
	for _, s := range subs {
		s.LoadMW = totalLoad * s.loadWeight / totalWeight
	}
}

// injectCrossBorder adds an equal share of each country's net flow to the HV
// substations inside that country's border box.
func (e *Estimator) injectCrossBorder(subs []*Substation, flows map[string]telemetry.Flow) {
	for country, flow := range flows {
		box, ok := e.borderBoxes[country]
		if !ok {
			continue
		}
		var borderSubs []*Substation
		for _, s := range subs {
			if s.VoltageKV >= hvVoltageKV && box.Contains(s.Location) {
				borderSubs = append(borderSubs, s)
			}
		}
		if len(borderSubs) == 0 {
			continue
		}
		share := flow.NetMW() / float64(len(borderSubs))
		for _, s := range borderSubs {
			s.CrossborderMW += share
		}
	}
}

func statusFor(loadPercent float64) string {
	switch {
	case loadPercent > 80:
		return "high"
	case loadPercent > 50:
		return "medium"
	default:
		return "low"
	}
}

func buildReport(subs []*Substation, plants []*catalog.PowerPlant, factors map[catalog.Category]float64, assigned int) *Report {
	report := &Report{
		Timestamp:          time.Now().UTC(),
		UtilizationFactors: factors,
	}

	for _, s := range subs {
		top := append([]*catalog.PowerPlant{}, s.Plants...)
		sort.SliceStable(top, func(i, j int) bool {
			return top[i].ProductionMW > top[j].ProductionMW
		})
		if len(top) > topPlantsPerSubstation {
			top = top[:topPlantsPerSubstation]
		}
		connected := make([]ConnectedPlant, 0, len(top))
		for _, p := range top {
			connected = append(connected, ConnectedPlant{
				Name:         p.Name,
				Source:       string(p.Category),
				CapacityMW:   p.CapacityMW,
				ProductionMW: p.ProductionMW,
				Utilization:  p.UtilizationFactor,
			})
		}

		breakdown := make(map[string]BreakdownEntry)
		for _, p := range s.Plants {
			entry := breakdown[string(p.Category)]
			entry.ProductionMW += p.ProductionMW
			entry.CapacityMW += p.CapacityMW
			entry.PlantCount++
			breakdown[string(p.Category)] = entry
		}
		for cat, entry := range breakdown {
			if entry.ProductionMW <= 0 {
				delete(breakdown, cat)
			}
		}

		report.Substations = append(report.Substations, SubstationLoad{
			ID:                  s.ID,
			Name:                s.Name,
			Lat:                 s.Location.Lat,
			Lon:                 s.Location.Lon,
			VoltageKV:           s.VoltageKV,
			CapacityMVA:         s.CapacityMVA,
			GenerationMW:        s.GenerationMW,
			LoadMW:              s.LoadMW,
			CrossborderMW:       s.CrossborderMW,
			NetFlowMW:           s.NetFlowMW,
			LoadPercent:         s.LoadPercent,
			Status:              s.Status,
			PlantCount:          len(s.Plants),
			ConnectedPlants:     connected,
			GenerationBreakdown: breakdown,
		})

		report.Summary.TotalGenerationMW += s.GenerationMW
		report.Summary.TotalLoadMW += s.LoadMW
		switch s.Status {
		case "high":
			report.Summary.HighLoad++
		case "medium":
			report.Summary.MediumLoad++
		default:
			report.Summary.LowLoad++
		}
	}

	report.Summary.TotalSubstations = len(subs)
	report.Summary.TotalPlants = len(plants)
	report.Summary.AssignedPlants = assigned
	report.Summary.UnassignedPlants = len(plants) - assigned
	return report
}
