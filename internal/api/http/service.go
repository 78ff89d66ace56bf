// Package apihttp exposes the estimation engine over a REST API.
package apihttp

import (
	"context"
	"time"

	"go.uber.org/zap"

	"grid-atlas/internal/archive"
	"grid-atlas/internal/cache"
	"grid-atlas/internal/catalog"
	"grid-atlas/internal/district"
	"grid-atlas/internal/gridload"
	"grid-atlas/internal/observability/metrics"
	"grid-atlas/internal/siting"
	"grid-atlas/internal/sources"
)

// Cache keys, one per cacheable endpoint.
const (
	cacheKeyDistricts = "district-capacity"
	cacheKeyGridLoad  = "grid-load"
)

// Service computes the API responses: spatial analysis over the loaded
// datasets with a short-lived result cache in front.
type Service struct {
	data      *sources.Dataset
	estimator *gridload.Estimator
	checker   *siting.Checker
	cache     *cache.Cache
	archive   *archive.Repository
	logger    *zap.SugaredLogger
}

// NewService assembles the service. archiveRepo may be nil.
func NewService(data *sources.Dataset, estimator *gridload.Estimator, results *cache.Cache, archiveRepo *archive.Repository, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	checker := siting.NewChecker(
		data.SitingTransformers(),
		data.SitingSubstations(),
		data.WindTurbines,
		sources.SolarInstallations(data.Plants),
	)
	return &Service{
		data:      data,
		estimator: estimator,
		checker:   checker,
		cache:     results,
		archive:   archiveRepo,
		logger:    logger,
	}
}

// DistrictCapacity scores every district, reusing a cached result when
// fresh.
func (s *Service) DistrictCapacity(ctx context.Context) district.Result {
	if v, ok := s.cache.Get(cacheKeyDistricts); ok {
		metrics.IncCache(cacheKeyDistricts, true)
		return v.(district.Result)
	}
	metrics.IncCache(cacheKeyDistricts, false)

	start := time.Now()
	result := district.Compute(s.data.Districts, s.data.WindParks, s.data.DistrictTransformers())
	metrics.ObserveEstimation(cacheKeyDistricts, nil, time.Since(start))
	metrics.SetUnassigned("windparks", result.UnassignedWindParks)
	metrics.SetUnassigned("transformers", result.UnassignedTransformers)

	s.cache.Set(cacheKeyDistricts, result)
	s.archiveRun(ctx, cacheKeyDistricts, false, map[string]int{
		"districts":               len(result.Reports),
		"unassigned_windparks":    result.UnassignedWindParks,
		"unassigned_transformers": result.UnassignedTransformers,
	})
	return result
}

// GridLoad runs the substation load model, reusing a cached report when
// fresh.
func (s *Service) GridLoad(ctx context.Context) *gridload.Report {
	if v, ok := s.cache.Get(cacheKeyGridLoad); ok {
		metrics.IncCache(cacheKeyGridLoad, true)
		return v.(*gridload.Report)
	}
	metrics.IncCache(cacheKeyGridLoad, false)

	start := time.Now()
	report := s.estimator.Run(ctx, gridload.Inputs{
		Substations:      s.data.Substations,
		RegistryFallback: s.data.RegistryFallback(),
		PlantSources:     []catalog.SourceList{s.data.Plants},
	})
	metrics.ObserveEstimation(cacheKeyGridLoad, nil, time.Since(start))
	metrics.SetUnassigned("plants", report.Summary.UnassignedPlants)
	metrics.SetTelemetryDegraded(report.Degraded)
	metrics.SetSubstationStatus("high", report.Summary.HighLoad)
	metrics.SetSubstationStatus("medium", report.Summary.MediumLoad)
	metrics.SetSubstationStatus("low", report.Summary.LowLoad)

	s.cache.Set(cacheKeyGridLoad, report)
	s.archiveRun(ctx, cacheKeyGridLoad, report.Degraded, report.Summary)
	return report
}

// Plant is the catalog passthrough row.
type Plant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Source     string  `json:"source"`
	CapacityMW float64 `json:"capacity_mw"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Operator   string  `json:"operator,omitempty"`
}

// Plants returns the canonical deduplicated plant catalog.
func (s *Service) Plants() []Plant {
	plants := catalog.BuildCatalog([]catalog.SourceList{s.data.Plants})
	out := make([]Plant, 0, len(plants))
	for _, p := range plants {
		out = append(out, Plant{
			ID:         p.ID,
			Name:       p.Name,
			Source:     string(p.Category),
			CapacityMW: p.CapacityMW,
			Lat:        p.Location.Lat,
			Lon:        p.Location.Lon,
			Operator:   p.Operator,
		})
	}
	return out
}

// WindParkRow is the windpark passthrough row.
type WindParkRow struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	TotalMW  float64 `json:"total_mw"`
	Turbines int     `json:"turbines"`
}

// WindParks returns the raw windpark catalog.
func (s *Service) WindParks() []WindParkRow {
	out := make([]WindParkRow, 0, len(s.data.WindParks))
	for _, wp := range s.data.WindParks {
		out = append(out, WindParkRow{
			Lat:      wp.Location.Lat,
			Lon:      wp.Location.Lon,
			TotalMW:  wp.TotalMW,
			Turbines: wp.Turbines,
		})
	}
	return out
}

// StationRow is the transformer registry passthrough row.
type StationRow struct {
	Name        string  `json:"name"`
	Operator    string  `json:"operator"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	BookedMW    float64 `json:"booked_mw"`
	AvailableMW float64 `json:"available_mw"`
	Contact     string  `json:"contact,omitempty"`
	Website     string  `json:"website,omitempty"`
}

// Stations returns the raw transformer station registry.
func (s *Service) Stations() []StationRow {
	out := make([]StationRow, 0, len(s.data.Stations))
	for _, st := range s.data.Stations {
		out = append(out, StationRow{
			Name:        st.Name,
			Operator:    st.Operator,
			Lat:         st.Location.Lat,
			Lon:         st.Location.Lon,
			BookedMW:    st.BookedMW,
			AvailableMW: st.AvailableMW,
			Contact:     st.Contact,
			Website:     st.Website,
		})
	}
	return out
}

// CheckSiting assesses one coordinate.
func (s *Service) CheckSiting(lat, lon float64) *siting.Report {
	return s.checker.Check(lat, lon)
}

// InvalidateCache drops every cached result.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate(cacheKeyDistricts)
	s.cache.Invalidate(cacheKeyGridLoad)
}

// ListRuns returns archived runs, or nil when no archive is configured.
func (s *Service) ListRuns(ctx context.Context, endpoint string, limit int) ([]archive.Run, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.ListRuns(ctx, endpoint, limit)
}

func (s *Service) archiveRun(ctx context.Context, endpoint string, degraded bool, summary any) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.SaveRun(ctx, endpoint, degraded, summary); err != nil {
		s.logger.Warnw("archive write failed", "endpoint", endpoint, "error", err)
	}
}
