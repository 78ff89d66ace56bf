// Package siting grades the grid-connection feasibility of a prospective
// wind or solar installation at a coordinate: nearby transformer capacity,
// high-voltage access, the surrounding installation base, and regional yield
// factors.
package siting

import (
	"fmt"
	"math"
	"sort"

	"grid-atlas/internal/geo"
	"grid-atlas/internal/regions"
)

const (
	transformerRadiusKm  = 30.0
	hvRadiusKm           = 50.0
	installationRadiusKm = 10.0
	hvVoltageKV          = 220

	maxNearbyTransformers = 5
	maxNearbyHV           = 3

	defaultWindCF        = 0.20
	defaultSolarCF       = 0.11
	defaultSunshineHours = 1800

	// Reference installations for the annual-yield estimates.
	refSolarKW   = 10.0
	refWindMW    = 3.0
	hoursPerYear = 8760

	feedInEURPerKWh = 0.08
	windEURPerMWh   = 80.0
)

// Transformer is one registry station offering connection capacity.
type Transformer struct {
	Name        string
	Operator    string
	Location    geo.Point
	AvailableMW float64
	BookedMW    float64
}

// HVSubstation is a grid node considered for high-voltage access.
type HVSubstation struct {
	Name      string
	Operator  string
	Location  geo.Point
	VoltageKV int
}

// Installation is an existing wind turbine or solar plant.
type Installation struct {
	Name       string
	Location   geo.Point
	CapacityMW float64
}

// Checker holds the static siting catalogs. Safe for concurrent Check calls.
type Checker struct {
	transformers []Transformer
	substations  []HVSubstation
	wind         []Installation
	solar        []Installation
}

// NewChecker builds a checker over the given catalogs. Slices are referenced,
// not copied; callers must not mutate them afterwards.
func NewChecker(transformers []Transformer, substations []HVSubstation, wind, solar []Installation) *Checker {
	return &Checker{
		transformers: transformers,
		substations:  substations,
		wind:         wind,
		solar:        solar,
	}
}

// TransformerDistance is a transformer annotated with its distance to the
// checked location.
type TransformerDistance struct {
	Name        string  `json:"name"`
	Operator    string  `json:"operator"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	AvailableMW float64 `json:"available_mw"`
	BookedMW    float64 `json:"booked_mw"`
	DistanceKm  float64 `json:"distance_km"`
}

// SubstationDistance is an HV substation annotated with its distance.
type SubstationDistance struct {
	Name       string  `json:"name"`
	Operator   string  `json:"operator"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	VoltageKV  int     `json:"voltage"`
	DistanceKm float64 `json:"distance_km"`
}

// GridConnection describes how hard a grid connection would be at the
// location.
type GridConnection struct {
	Difficulty          string                `json:"difficulty"`
	NearestTransformer  *TransformerDistance  `json:"nearest_transformer"`
	NearbyTransformers  []TransformerDistance `json:"nearby_transformers"`
	NearbyHVSubstations []SubstationDistance  `json:"nearby_hv_substations"`
	GridOperator        string                `json:"grid_operator"`
}

// NearbyInstallations counts the existing base within the installation
// radius.
type NearbyInstallations struct {
	WindTurbines    int     `json:"wind_turbines"`
	WindCapacityMW  float64 `json:"wind_capacity_mw"`
	SolarPlants     int     `json:"solar_plants"`
	SolarCapacityMW float64 `json:"solar_capacity_mw"`
}

// RegionalFactors are the yield assumptions for the location's region.
type RegionalFactors struct {
	WindCapacityFactor  float64 `json:"wind_capacity_factor"`
	SolarCapacityFactor float64 `json:"solar_capacity_factor"`
	SunshineHoursYear   int     `json:"sunshine_hours_year"`
}

// Estimates projects annual yield for two reference installations: a 10 kW
// rooftop solar array and a 3 MW wind turbine.
type Estimates struct {
	Solar10KWAnnualKWh int `json:"solar_10kw_annual_kwh"`
	Solar10KWAnnualEUR int `json:"solar_10kw_annual_eur"`
	Wind3MWAnnualMWh   int `json:"wind_3mw_annual_mwh"`
	Wind3MWAnnualEUR   int `json:"wind_3mw_annual_eur"`
}

// Recommendation is one advisory line for the location.
type Recommendation struct {
	Type   string `json:"type"`
	Rating string `json:"rating"`
	Text   string `json:"text"`
}

// LocationInfo echoes the checked coordinate and its classified region.
type LocationInfo struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Region string  `json:"region"`
}

// Report is the full siting assessment for one location.
type Report struct {
	Location            LocationInfo        `json:"location"`
	GridConnection      GridConnection      `json:"grid_connection"`
	NearbyInstallations NearbyInstallations `json:"nearby_installations"`
	RegionalFactors     RegionalFactors     `json:"regional_factors"`
	Estimates           Estimates           `json:"estimates"`
	Recommendations     []Recommendation    `json:"recommendations"`
}

// Check assesses the location and returns the siting report.
func (c *Checker) Check(lat, lon float64) *Report {
	region := regions.Of(lat, lon)

	nearby := c.nearbyTransformers(lat, lon)
	var nearest *TransformerDistance
	if len(nearby) > 0 {
		nearest = &nearby[0]
	}

	windCF := factorOr(regions.WindCapacityFactors, region, defaultWindCF)
	solarCF := factorOr(regions.SolarCapacityFactors, region, defaultSolarCF)
	sunshine := defaultSunshineHours
	if h, ok := regions.SunshineHours[region]; ok {
		sunshine = h
	}

	installations := c.nearbyInstallations(lat, lon)
	difficulty := gradeDifficulty(nearest)

	solarKWh := refSolarKW * solarCF * hoursPerYear
	windMWh := refWindMW * windCF * hoursPerYear

	operator := "Unknown"
	if nearest != nil {
		operator = nearest.Operator
	}

	return &Report{
		Location: LocationInfo{Lat: lat, Lon: lon, Region: string(region)},
		GridConnection: GridConnection{
			Difficulty:          difficulty,
			NearestTransformer:  nearest,
			NearbyTransformers:  limit(nearby, maxNearbyTransformers),
			NearbyHVSubstations: c.nearbyHV(lat, lon),
			GridOperator:        operator,
		},
		NearbyInstallations: installations,
		RegionalFactors: RegionalFactors{
			WindCapacityFactor:  windCF,
			SolarCapacityFactor: solarCF,
			SunshineHoursYear:   sunshine,
		},
		Estimates: Estimates{
			Solar10KWAnnualKWh: int(math.Round(solarKWh)),
			Solar10KWAnnualEUR: int(math.Round(solarKWh * feedInEURPerKWh)),
			Wind3MWAnnualMWh:   int(math.Round(windMWh)),
			Wind3MWAnnualEUR:   int(math.Round(windMWh * windEURPerMWh)),
		},
		Recommendations: recommendations(region, difficulty, windCF, solarCF, installations.WindTurbines),
	}
}

func (c *Checker) nearbyTransformers(lat, lon float64) []TransformerDistance {
	var out []TransformerDistance
	for _, t := range c.transformers {
		dist := geo.Distance(lat, lon, t.Location.Lat, t.Location.Lon)
		if dist >= transformerRadiusKm {
			continue
		}
		out = append(out, TransformerDistance{
			Name:        t.Name,
			Operator:    t.Operator,
			Lat:         t.Location.Lat,
			Lon:         t.Location.Lon,
			AvailableMW: t.AvailableMW,
			BookedMW:    t.BookedMW,
			DistanceKm:  round1(dist),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func (c *Checker) nearbyHV(lat, lon float64) []SubstationDistance {
	var out []SubstationDistance
	for _, s := range c.substations {
		if s.VoltageKV < hvVoltageKV {
			continue
		}
		dist := geo.Distance(lat, lon, s.Location.Lat, s.Location.Lon)
		if dist >= hvRadiusKm {
			continue
		}
		out = append(out, SubstationDistance{
			Name:       s.Name,
			Operator:   s.Operator,
			Lat:        s.Location.Lat,
			Lon:        s.Location.Lon,
			VoltageKV:  s.VoltageKV,
			DistanceKm: round1(dist),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return limit(out, maxNearbyHV)
}

func (c *Checker) nearbyInstallations(lat, lon float64) NearbyInstallations {
	var n NearbyInstallations
	for _, w := range c.wind {
		if geo.Distance(lat, lon, w.Location.Lat, w.Location.Lon) < installationRadiusKm {
			n.WindTurbines++
			n.WindCapacityMW += w.CapacityMW
		}
	}
	for _, s := range c.solar {
		if geo.Distance(lat, lon, s.Location.Lat, s.Location.Lon) < installationRadiusKm {
			n.SolarPlants++
			n.SolarCapacityMW += s.CapacityMW
		}
	}
	n.WindCapacityMW = round1(n.WindCapacityMW)
	n.SolarCapacityMW = round1(n.SolarCapacityMW)
	return n
}

// gradeDifficulty maps the best transformer candidate to a difficulty grade.
// Available headroom dominates, distance refines.
func gradeDifficulty(best *TransformerDistance) string {
	switch {
	case best == nil:
		return "unknown"
	case best.AvailableMW > 10 && best.DistanceKm < 5:
		return "easy"
	case best.AvailableMW > 5 && best.DistanceKm < 15:
		return "medium"
	case best.AvailableMW > 0:
		return "challenging"
	default:
		return "difficult"
	}
}

func recommendations(region regions.Region, difficulty string, windCF, solarCF float64, windNearby int) []Recommendation {
	var recs []Recommendation

	if solarCF >= 0.11 {
		recs = append(recs, Recommendation{
			Type:   "solar",
			Rating: "good",
			Text:   fmt.Sprintf("Gute Sonneneinstrahlung in %s (%.0f%% Kapazitätsfaktor)", region, solarCF*100),
		})
	}

	switch {
	case windCF >= 0.25:
		recs = append(recs, Recommendation{
			Type:   "wind",
			Rating: "excellent",
			Text:   fmt.Sprintf("Ausgezeichnete Windverhältnisse (%.0f%% Kapazitätsfaktor)", windCF*100),
		})
	case windCF >= 0.20:
		recs = append(recs, Recommendation{
			Type:   "wind",
			Rating: "good",
			Text:   fmt.Sprintf("Gute Windverhältnisse (%.0f%% Kapazitätsfaktor)", windCF*100),
		})
	default:
		recs = append(recs, Recommendation{
			Type:   "wind",
			Rating: "moderate",
			Text:   fmt.Sprintf("Mäßige Windverhältnisse (%.0f%% Kapazitätsfaktor)", windCF*100),
		})
	}

	switch difficulty {
	case "easy":
		recs = append(recs, Recommendation{
			Type:   "grid",
			Rating: "good",
			Text:   "Einfacher Netzanschluss möglich (nahe Kapazität verfügbar)",
		})
	case "difficult":
		recs = append(recs, Recommendation{
			Type:   "grid",
			Rating: "warning",
			Text:   "Netzanschluss könnte schwierig sein - Kapazitätsengpass",
		})
	}

	if windNearby > 5 {
		recs = append(recs, Recommendation{
			Type:   "info",
			Rating: "info",
			Text:   fmt.Sprintf("%d Windkraftanlagen im Umkreis von 10 km - etablierter Standort", windNearby),
		})
	}
	return recs
}

func factorOr(table map[regions.Region]float64, r regions.Region, fallback float64) float64 {
	if f, ok := table[r]; ok {
		return f
	}
	return fallback
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
