// Package regions holds the fixed Austrian region tables: the piecewise
// coordinate classifier for the nine Länder, per-region load and capacity
// factors, and the border bounding boxes used for cross-border flow
// assignment. The classifier is a coarse heuristic, not an administrative
// boundary lookup.
package regions

import "grid-atlas/internal/geo"

// Region names the nine Austrian Länder.
type Region string

const (
	Wien              Region = "Wien"
	Niederoesterreich Region = "Niederösterreich"
	Oberoesterreich   Region = "Oberösterreich"
	Steiermark        Region = "Steiermark"
	Vorarlberg        Region = "Vorarlberg"
	Tirol             Region = "Tirol"
	Salzburg          Region = "Salzburg"
	Kaernten          Region = "Kärnten"
	Burgenland        Region = "Burgenland"
)

// Of classifies a coordinate into a region by coordinate ranges, falling back
// to Niederösterreich.
func Of(lat, lon float64) Region {
	switch {
	case lon > 16 && lat > 48:
		return Wien
	case lon > 15.5 && lat > 48:
		return Niederoesterreich
	case lon > 13 && lon < 15 && lat > 47.5:
		return Oberoesterreich
	case lon > 14 && lat < 47.5:
		return Steiermark
	case lon < 11:
		return Vorarlberg
	case lon < 12.5 && lat < 47.5:
		return Tirol
	case lon > 12.5 && lon < 14 && lat > 47:
		return Salzburg
	case lon > 13 && lon < 15 && lat < 47:
		return Kaernten
	case lon > 16:
		return Burgenland
	default:
		return Niederoesterreich
	}
}

// LoadFactors approximates relative population and industry density per
// region, used to distribute the national load across substations.
var LoadFactors = map[Region]float64{
	Wien:              2.5,
	Oberoesterreich:   1.5,
	Niederoesterreich: 1.3,
	Steiermark:        1.2,
	Salzburg:          0.8,
	Tirol:             0.7,
	Kaernten:          0.6,
	Vorarlberg:        0.5,
	Burgenland:        0.4,
}

// DefaultLoadFactor applies to coordinates the classifier cannot place.
const DefaultLoadFactor = 0.5

// LoadFactor returns the regional load factor with the default fallback.
func LoadFactor(r Region) float64 {
	if f, ok := LoadFactors[r]; ok {
		return f
	}
	return DefaultLoadFactor
}

// WindCapacityFactors are approximate annual average capacity factors for
// wind, per region. Burgenland has the best wind in Austria.
var WindCapacityFactors = map[Region]float64{
	Burgenland:        0.28,
	Niederoesterreich: 0.25,
	Steiermark:        0.22,
	Wien:              0.20,
	Oberoesterreich:   0.20,
	Kaernten:          0.18,
	Salzburg:          0.15,
	Tirol:             0.15,
	Vorarlberg:        0.15,
}

// SolarCapacityFactors are approximate annual average capacity factors for
// solar, per region.
var SolarCapacityFactors = map[Region]float64{
	Burgenland:        0.12,
	Kaernten:          0.12,
	Niederoesterreich: 0.11,
	Wien:              0.11,
	Steiermark:        0.11,
	Tirol:             0.11,
	Oberoesterreich:   0.10,
	Salzburg:          0.10,
	Vorarlberg:        0.10,
}

// SunshineHours are average sunshine hours per year, per region.
var SunshineHours = map[Region]int{
	Burgenland:        2000,
	Kaernten:          2000,
	Niederoesterreich: 1900,
	Wien:              1900,
	Steiermark:        1850,
	Tirol:             1800,
	Oberoesterreich:   1700,
	Salzburg:          1700,
	Vorarlberg:        1650,
}

// BorderBox is the coordinate window along one neighbouring bidding zone.
type BorderBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point falls inside the box (inclusive).
func (b BorderBox) Contains(p geo.Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BorderBoxes maps neighbouring country codes to the Austrian border strip
// where that country's cross-border flow enters the grid.
var BorderBoxes = map[string]BorderBox{
	"DE": {MinLat: 47.5, MaxLat: 48.8, MinLon: 9.5, MaxLon: 13.0},
	"CZ": {MinLat: 48.5, MaxLat: 49.0, MinLon: 14.5, MaxLon: 17.0},
	"SK": {MinLat: 47.8, MaxLat: 48.5, MinLon: 16.5, MaxLon: 17.5},
	"HU": {MinLat: 46.8, MaxLat: 47.8, MinLon: 16.0, MaxLon: 17.5},
	"SI": {MinLat: 46.3, MaxLat: 47.0, MinLon: 13.5, MaxLon: 16.0},
	"IT": {MinLat: 46.3, MaxLat: 47.3, MinLon: 10.0, MaxLon: 13.0},
	"CH": {MinLat: 46.8, MaxLat: 47.5, MinLon: 9.5, MaxLon: 10.5},
}
