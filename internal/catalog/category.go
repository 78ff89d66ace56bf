package catalog

import "strings"

// Category is the enumerated generation-technology bucket used to align
// catalog assets with telemetry categories.
type Category string

const (
	HydroRunOfRiver Category = "hydro_run_of_river"
	HydroReservoir  Category = "hydro_reservoir"
	HydroPumped     Category = "hydro_pumped"
	Wind            Category = "wind"
	Solar           Category = "solar"
	Gas             Category = "gas"
	Coal            Category = "coal"
	Oil             Category = "oil"
	Biomass         Category = "biomass"
	Waste           Category = "waste"
	Geothermal      Category = "geothermal"
	Other           Category = "other"
)

// Categories lists every category in a fixed, reproducible order.
var Categories = []Category{
	HydroRunOfRiver, HydroReservoir, HydroPumped,
	Wind, Solar, Gas, Coal, Oil, Biomass, Waste, Geothermal, Other,
}

// exactLabels maps catalog and telemetry source labels to categories. The
// telemetry labels cover the ENTSO-E production-type names in both their
// English and German forms.
var exactLabels = map[string]Category{
	"hydro_run_of_river": HydroRunOfRiver,
	"hydro_reservoir":    HydroReservoir,
	"hydro_pumped":       HydroPumped,
	"wind":               Wind,
	"solar":              Solar,
	"gas":                Gas,
	"coal":               Coal,
	"oil":                Oil,
	"biomass":            Biomass,
	"waste":              Waste,
	"geothermal":         Geothermal,
	"other":              Other,

	"Hydro Run-of-river and poundage": HydroRunOfRiver,
	"Hydro Water Reservoir":           HydroReservoir,
	"Hydro Pumped Storage":            HydroPumped,
	"Wasserkraft (Laufwasser)":        HydroRunOfRiver,
	"Wasserkraft (Speicher)":          HydroReservoir,
	"Wasserkraft (Pumpspeicher)":      HydroPumped,
	"Wind Onshore":                    Wind,
	"Wind Offshore":                   Wind,
	"Solar":                           Solar,
	"Fossil Gas":                      Gas,
	"Erdgas":                          Gas,
	"Gas":                             Gas,
	"Fossil Hard coal":                Coal,
	"Fossil Oil":                      Oil,
	"Biomass":                         Biomass,
	"Biomasse":                        Biomass,
	"Waste":                           Waste,
	"Abfall":                          Waste,
	"Geothermal":                      Geothermal,
	"Geothermie":                      Geothermal,
	"Other renewable":                 Other,
	"Other":                           Other,
	"Andere":                          Other,
	"Andere erneuerbare":              Other,
}

// substringRules handles raw OSM-style source tags. Order matters: the first
// matching rule wins. These are the only substring checks permitted; nothing
// else infers categories from free text.
var substringRules = []struct {
	substr string
	cat    Category
}{
	{"pump", HydroPumped},
	{"reservoir", HydroReservoir},
	{"speicher", HydroReservoir},
	{"dam", HydroReservoir},
	{"hydro", HydroRunOfRiver},
	{"water", HydroRunOfRiver},
	{"laufwasser", HydroRunOfRiver},
	{"photovoltaic", Solar},
	{"solar", Solar},
	{"wind", Wind},
	{"gas", Gas},
	{"coal", Coal},
	{"kohle", Coal},
	{"oil", Oil},
	{"bio", Biomass},
	{"waste", Waste},
	{"abfall", Waste},
	{"geothermal", Geothermal},
}

// CategoryFromLabel resolves a source label or hint to a category. Unknown
// labels map to Other.
func CategoryFromLabel(label string) Category {
	if cat, ok := exactLabels[label]; ok {
		return cat
	}
	lower := strings.ToLower(strings.TrimSpace(label))
	if cat, ok := exactLabels[lower]; ok {
		return cat
	}
	for _, rule := range substringRules {
		if strings.Contains(lower, rule.substr) {
			return rule.cat
		}
	}
	return Other
}

// Specificity ranks how precise a classification is, for the dedup merge
// comparator. Other is the weakest; run-of-river ranks below the explicit
// hydro subtypes because it doubles as the generic hydro default.
func Specificity(cat Category) int {
	switch cat {
	case Other:
		return 0
	case HydroRunOfRiver:
		return 1
	default:
		return 2
	}
}

// DefaultUtilization is the off-sample utilization factor per category,
// applied when telemetry carries no figure for it. Solar is near zero (the
// sample is usually missing at night); biomass and waste run as baseload.
var DefaultUtilization = map[Category]float64{
	HydroRunOfRiver: 0.4,
	HydroReservoir:  0.3,
	HydroPumped:     0.2,
	Wind:            0.2,
	Solar:           0.05,
	Gas:             0.5,
	Coal:            0.3,
	Oil:             0.1,
	Biomass:         0.55,
	Waste:           0.55,
	Geothermal:      0.4,
	Other:           0.3,
}
