package gridload

import (
	"fmt"
	"strconv"
	"strings"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/geo"
)

// Substation is one grid node with its per-run flow state. The substation
// owns its plant list; plants hold only a weak reference back.
type Substation struct {
	ID        string
	Name      string
	Location  geo.Point
	VoltageKV int
	Operator  string

	// CapacityMVA is a nameplate proxy derived from the voltage tier, not a
	// measured rating.
	CapacityMVA float64

	GenerationMW  float64
	LoadMW        float64
	CrossborderMW float64
	NetFlowMW     float64
	LoadPercent   float64
	Status        string

	Plants []*catalog.PowerPlant

	loadWeight float64
}

// Record is one raw substation source row after field normalization: either
// an OSM point/polygon feature (centroid resolved by the loader) or a
// transformer-registry fallback entry.
type Record struct {
	ID        string
	Name      string
	Lat       float64
	Lon       float64
	VoltageKV int
	Operator  string
}

// ParseVoltageKV normalizes a raw voltage tag to kV. Multi-valued tags keep
// the first entry; values in volts are scaled down; unparsable input yields
// the fallback.
func ParseVoltageKV(value string, fallback int) int {
	value = strings.TrimSpace(strings.ReplaceAll(value, "kV", ""))
	value = strings.SplitN(value, ";", 2)[0]
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	kv := int(f)
	if kv > 1000 {
		kv /= 1000
	}
	return kv
}

// capacityMVAForVoltage is the fixed nameplate proxy table.
func capacityMVAForVoltage(voltageKV int) float64 {
	switch {
	case voltageKV >= 380:
		return 2000
	case voltageKV >= 220:
		return 750
	default:
		return 300
	}
}

// dedupKm is the proximity threshold under which two substation records are
// considered the same physical station.
const dedupKm = 1.0

// BuildSubstations merges the primary (OSM) records with the registry
// fallback. Records below 110 kV or with invalid coordinates are dropped.
// Records within dedupKm of an existing station dedup against it; a named
// record replaces an anonymous survivor, otherwise the existing one stays.
func BuildSubstations(primary, fallback []Record) []*Substation {
	var subs []*Substation
	for _, rec := range append(append([]Record{}, primary...), fallback...) {
		if !validCoordinate(rec.Lat, rec.Lon) {
			continue
		}
		if rec.VoltageKV < 110 {
			continue
		}
		incoming := newSubstation(rec)
		if existing := findNear(subs, incoming.Location); existing != nil {
			if existing.Name == "" && incoming.Name != "" {
				*existing = *incoming
			}
			continue
		}
		subs = append(subs, incoming)
	}
	return subs
}

func newSubstation(rec Record) *Substation {
	id := rec.ID
	if id == "" {
		id = fmt.Sprintf("sub:%.3f|%.3f", rec.Lat, rec.Lon)
	}
	return &Substation{
		ID:          id,
		Name:        rec.Name,
		Location:    geo.Point{Lat: rec.Lat, Lon: rec.Lon},
		VoltageKV:   rec.VoltageKV,
		Operator:    rec.Operator,
		CapacityMVA: capacityMVAForVoltage(rec.VoltageKV),
		Status:      "unknown",
	}
}

func findNear(subs []*Substation, p geo.Point) *Substation {
	for _, s := range subs {
		if geo.Distance(p.Lat, p.Lon, s.Location.Lat, s.Location.Lon) <= dedupKm {
			return s
		}
	}
	return nil
}

func validCoordinate(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// addPlant attaches a plant to the substation and records the weak back
// reference.
func (s *Substation) addPlant(plant *catalog.PowerPlant) {
	s.Plants = append(s.Plants, plant)
	plant.SubstationID = s.ID
}
