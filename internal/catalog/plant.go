package catalog

import "grid-atlas/internal/geo"

// PowerPlant is a canonical generation asset after normalization and dedup.
type PowerPlant struct {
	ID       string
	Name     string
	Category Category
	Location geo.Point
	Operator string

	CapacityMW float64

	// Derived per estimation run.
	ProductionMW      float64
	UtilizationFactor float64

	// SubstationID is a weak reference to the assigned substation, for lookup
	// only; the substation owns the plant list.
	SubstationID string
}

// SourceRecord is one raw asset after field-name normalization. The loader
// maps each source's field shapes into this form; the builder maps the label
// to a category and dedups.
type SourceRecord struct {
	ID         string
	Name       string
	Label      string
	CapacityMW float64
	Lat        float64
	Lon        float64
	Operator   string
}

// SourceList is a named catalog of raw records. Lists are processed in a
// fixed priority order; the order of records within a list is preserved.
type SourceList struct {
	Name    string
	Records []SourceRecord
}
