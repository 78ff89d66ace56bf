// Package sources loads the static Austrian grid datasets from disk and maps
// them onto the domain types. A missing file is a hard error; a malformed
// record inside a file is skipped so one bad row cannot take down a dataset.
package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/district"
	"grid-atlas/internal/geo"
	"grid-atlas/internal/gridload"
	"grid-atlas/internal/siting"
)

// Paths names the dataset files for one deployment.
type Paths struct {
	Districts    string
	WindParks    string
	Transformers string
	Substations  string
	PowerPlants  string
	WindTurbines string
}

// DefaultPaths resolves the conventional file names under dir.
func DefaultPaths(dir string) Paths {
	join := func(name string) string { return strings.TrimRight(dir, "/") + "/" + name }
	return Paths{
		Districts:    join("bezirke.json"),
		WindParks:    join("windparks.json"),
		Transformers: join("transformer_stations.json"),
		Substations:  join("osm_substations.json"),
		PowerPlants:  join("all_power_plants.json"),
		WindTurbines: join("wind_turbines_enhanced.json"),
	}
}

// flexFloat decodes a JSON number, a numeric string (German decimal comma
// included), or null, defaulting to zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a JSON string or bare number into a string. OSM exports
// mix both for ids and voltage tags.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	*f = flexString(strings.Trim(s, `"`))
	return nil
}

// flexCapacity decodes a capacity field into MW. Bare numbers are taken as MW
// verbatim; strings go through the unit-aware parser, so values like "2,5 MW"
// or "1500 kW" survive. Unparsable values yield zero.
type flexCapacity float64

func (f *flexCapacity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) > 0 && s[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*f = 0
			return nil
		}
		mw, ok := catalog.ParseCapacityMW(raw)
		if !ok {
			*f = 0
			return nil
		}
		*f = flexCapacity(mw)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexCapacity(v)
	return nil
}

// flexInt decodes a JSON integer or numeric string, defaulting to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var v flexFloat
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sources: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("sources: decode %s: %w", path, err)
	}
	return nil
}

// LoadDistricts reads the district boundary collection. Features with
// undecodable geometry are skipped.
func LoadDistricts(path string) ([]district.District, error) {
	var fc geo.FeatureCollection
	if err := readJSON(path, &fc); err != nil {
		return nil, err
	}
	var out []district.District
	for _, f := range fc.Features {
		var props struct {
			Name string `json:"name"`
			ISO  string `json:"iso"`
		}
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			continue
		}
		g, err := geo.DecodeGeometry(f.Geometry)
		if err != nil {
			continue
		}
		out = append(out, district.District{Name: props.Name, ISO: props.ISO, Geometry: g})
	}
	return out, nil
}

// LoadWindParks reads the wind park list.
func LoadWindParks(path string) ([]district.WindPark, error) {
	var raw []struct {
		Lat      flexFloat `json:"lat"`
		Lon      flexFloat `json:"lon"`
		TotalMW  flexFloat `json:"total_mw"`
		Turbines flexInt   `json:"turbines"`
	}
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	var out []district.WindPark
	for _, r := range raw {
		if r.Lat == 0 && r.Lon == 0 {
			continue
		}
		out = append(out, district.WindPark{
			Location: geo.Point{Lat: float64(r.Lat), Lon: float64(r.Lon)},
			TotalMW:  float64(r.TotalMW),
			Turbines: int(r.Turbines),
		})
	}
	return out, nil
}

// TransformerStation is one registry row: a station offering connection
// capacity, with the operator's published booked and available figures.
type TransformerStation struct {
	Name        string
	Operator    string
	Location    geo.Point
	BookedMW    float64
	AvailableMW float64
	Contact     string
	Website     string
}

// LoadTransformerStations reads the transformer registry. Rows without
// coordinates are skipped.
func LoadTransformerStations(path string) ([]TransformerStation, error) {
	var raw []struct {
		Name      string     `json:"substationName"`
		Operator  string     `json:"networkOperator"`
		Lat       flexFloat  `json:"latitude"`
		Lon       flexFloat  `json:"longitude"`
		Booked    flexString `json:"bookedCapacity"`
		Available flexString `json:"availableCapacity"`
		Contact   string     `json:"contact"`
		Website   string     `json:"website"`
	}
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	var out []TransformerStation
	for _, r := range raw {
		if r.Lat == 0 && r.Lon == 0 {
			continue
		}
		out = append(out, TransformerStation{
			Name:        orDefault(r.Name, "Unknown"),
			Operator:    orDefault(r.Operator, "Unknown"),
			Location:    geo.Point{Lat: float64(r.Lat), Lon: float64(r.Lon)},
			BookedMW:    catalog.ParseMW(string(r.Booked)),
			AvailableMW: catalog.ParseMW(string(r.Available)),
			Contact:     r.Contact,
			Website:     r.Website,
		})
	}
	return out, nil
}

// LoadSubstations reads the OSM substation extract into raw grid records.
// Polygon features resolve to their outer-ring centroid.
func LoadSubstations(path string) ([]gridload.Record, error) {
	var fc geo.FeatureCollection
	if err := readJSON(path, &fc); err != nil {
		return nil, err
	}
	var out []gridload.Record
	for _, f := range fc.Features {
		var props struct {
			ID       flexString `json:"id"`
			Name     string     `json:"name"`
			Voltage  flexString `json:"voltage"`
			Operator string     `json:"operator"`
		}
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			continue
		}
		p, err := geo.DecodePoint(f.Geometry)
		if err != nil {
			continue
		}
		out = append(out, gridload.Record{
			ID:        string(props.ID),
			Name:      props.Name,
			Lat:       p.Lat,
			Lon:       p.Lon,
			VoltageKV: gridload.ParseVoltageKV(string(props.Voltage), 110),
			Operator:  props.Operator,
		})
	}
	return out, nil
}

// LoadPowerPlants reads the combined plant extract as one catalog source
// list. Label mapping and validation happen in the catalog builder.
func LoadPowerPlants(path, sourceName string) (catalog.SourceList, error) {
	var fc geo.FeatureCollection
	if err := readJSON(path, &fc); err != nil {
		return catalog.SourceList{}, err
	}
	list := catalog.SourceList{Name: sourceName}
	for _, f := range fc.Features {
		var props struct {
			ID         flexString   `json:"id"`
			Name       string       `json:"name"`
			Source     string       `json:"source"`
			CapacityMW flexCapacity `json:"capacity_mw"`
			Operator   string       `json:"operator"`
		}
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			continue
		}
		p, err := geo.DecodePoint(f.Geometry)
		if err != nil {
			continue
		}
		list.Records = append(list.Records, catalog.SourceRecord{
			ID:         string(props.ID),
			Name:       props.Name,
			Label:      props.Source,
			CapacityMW: float64(props.CapacityMW),
			Lat:        p.Lat,
			Lon:        p.Lon,
			Operator:   props.Operator,
		})
	}
	return list, nil
}

// defaultTurbineMW stands in for turbines without a capacity estimate.
const defaultTurbineMW = 3.0

// LoadWindTurbines reads the per-turbine extract for the siting checker.
func LoadWindTurbines(path string) ([]siting.Installation, error) {
	var raw []struct {
		Name        string    `json:"name"`
		Lat         flexFloat `json:"lat"`
		Lon         flexFloat `json:"lon"`
		EstimatedMW flexFloat `json:"estimated_mw"`
	}
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	var out []siting.Installation
	for _, r := range raw {
		if r.Lat == 0 && r.Lon == 0 {
			continue
		}
		mw := float64(r.EstimatedMW)
		if mw == 0 {
			mw = defaultTurbineMW
		}
		out = append(out, siting.Installation{
			Name:       orDefault(r.Name, "Wind Turbine"),
			Location:   geo.Point{Lat: float64(r.Lat), Lon: float64(r.Lon)},
			CapacityMW: mw,
		})
	}
	return out, nil
}

// SolarInstallations filters the plant list down to solar sites for the
// siting checker.
func SolarInstallations(list catalog.SourceList) []siting.Installation {
	var out []siting.Installation
	for _, r := range list.Records {
		if catalog.CategoryFromLabel(r.Label) != catalog.Solar {
			continue
		}
		if r.Lat == 0 && r.Lon == 0 {
			continue
		}
		out = append(out, siting.Installation{
			Name:       r.Name,
			Location:   geo.Point{Lat: r.Lat, Lon: r.Lon},
			CapacityMW: r.CapacityMW,
		})
	}
	return out
}

// Dataset bundles every loaded catalog for one service instance.
type Dataset struct {
	Districts    []district.District
	WindParks    []district.WindPark
	Stations     []TransformerStation
	Substations  []gridload.Record
	Plants       catalog.SourceList
	WindTurbines []siting.Installation
}

// LoadAll loads every dataset. Any missing file fails the whole load.
func LoadAll(p Paths) (*Dataset, error) {
	districts, err := LoadDistricts(p.Districts)
	if err != nil {
		return nil, err
	}
	windparks, err := LoadWindParks(p.WindParks)
	if err != nil {
		return nil, err
	}
	stations, err := LoadTransformerStations(p.Transformers)
	if err != nil {
		return nil, err
	}
	substations, err := LoadSubstations(p.Substations)
	if err != nil {
		return nil, err
	}
	plants, err := LoadPowerPlants(p.PowerPlants, "osm")
	if err != nil {
		return nil, err
	}
	turbines, err := LoadWindTurbines(p.WindTurbines)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Districts:    districts,
		WindParks:    windparks,
		Stations:     stations,
		Substations:  substations,
		Plants:       plants,
		WindTurbines: turbines,
	}, nil
}

// DistrictTransformers maps the registry rows onto the district analyzer's
// input type.
func (d *Dataset) DistrictTransformers() []district.Transformer {
	out := make([]district.Transformer, 0, len(d.Stations))
	for _, s := range d.Stations {
		out = append(out, district.Transformer{
			Location:    s.Location,
			BookedMW:    s.BookedMW,
			AvailableMW: s.AvailableMW,
		})
	}
	return out
}

// SitingTransformers maps the registry rows onto the siting checker's input
// type.
func (d *Dataset) SitingTransformers() []siting.Transformer {
	out := make([]siting.Transformer, 0, len(d.Stations))
	for _, s := range d.Stations {
		out = append(out, siting.Transformer{
			Name:        s.Name,
			Operator:    s.Operator,
			Location:    s.Location,
			AvailableMW: s.AvailableMW,
			BookedMW:    s.BookedMW,
		})
	}
	return out
}

// SitingSubstations maps the OSM records onto the siting checker's input
// type.
func (d *Dataset) SitingSubstations() []siting.HVSubstation {
	out := make([]siting.HVSubstation, 0, len(d.Substations))
	for _, r := range d.Substations {
		out = append(out, siting.HVSubstation{
			Name:      r.Name,
			Operator:  r.Operator,
			Location:  geo.Point{Lat: r.Lat, Lon: r.Lon},
			VoltageKV: r.VoltageKV,
		})
	}
	return out
}

// RegistryFallback converts the transformer registry rows into substation
// records for gap filling. Registry rows carry no voltage; they enter at the
// 110 kV floor.
func (d *Dataset) RegistryFallback() []gridload.Record {
	out := make([]gridload.Record, 0, len(d.Stations))
	for _, s := range d.Stations {
		out = append(out, gridload.Record{
			Name:      s.Name,
			Lat:       s.Location.Lat,
			Lon:       s.Location.Lon,
			VoltageKV: 110,
			Operator:  s.Operator,
		})
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
