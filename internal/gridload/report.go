package gridload

import (
	"time"

	"grid-atlas/internal/catalog"
)

// ConnectedPlant is the per-plant slice of a substation report, limited to
// the top producers.
type ConnectedPlant struct {
	Name         string  `json:"name"`
	Source       string  `json:"source"`
	CapacityMW   float64 `json:"capacity_mw"`
	ProductionMW float64 `json:"production_mw"`
	Utilization  float64 `json:"utilization"`
}

// BreakdownEntry aggregates one category's contribution at a substation.
type BreakdownEntry struct {
	ProductionMW float64 `json:"production_mw"`
	CapacityMW   float64 `json:"capacity_mw"`
	PlantCount   int     `json:"plant_count"`
}

// SubstationLoad is the externally consumed per-node state.
type SubstationLoad struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	VoltageKV     int     `json:"voltage"`
	CapacityMVA   float64 `json:"capacity_mva"`
	GenerationMW  float64 `json:"generation_mw"`
	LoadMW        float64 `json:"load_mw"`
	CrossborderMW float64 `json:"crossborder_mw"`
	NetFlowMW     float64 `json:"net_flow_mw"`
	LoadPercent   float64 `json:"load_percent"`
	Status        string  `json:"status"`
	PlantCount    int     `json:"plant_count"`

	ConnectedPlants     []ConnectedPlant          `json:"connected_plants"`
	GenerationBreakdown map[string]BreakdownEntry `json:"generation_breakdown"`
}

// Summary carries the system-wide counters.
type Summary struct {
	TotalSubstations  int     `json:"total_substations"`
	HighLoad          int     `json:"high_load"`
	MediumLoad        int     `json:"medium_load"`
	LowLoad           int     `json:"low_load"`
	TotalPlants       int     `json:"total_plants"`
	AssignedPlants    int     `json:"assigned_plants"`
	UnassignedPlants  int     `json:"unassigned_plants"`
	TotalGenerationMW float64 `json:"total_generation_mw"`
	TotalLoadMW       float64 `json:"total_load_mw"`
}

// Report is the full substation load report for one estimation run.
type Report struct {
	Timestamp          time.Time                    `json:"timestamp"`
	Substations        []SubstationLoad             `json:"substations"`
	UtilizationFactors map[catalog.Category]float64 `json:"utilization_factors"`
	Summary            Summary                      `json:"summary"`
	// Degraded is set when telemetry was unavailable and static defaults
	// were used for calibration and load distribution.
	Degraded bool `json:"degraded"`
}
