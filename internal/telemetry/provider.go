// Package telemetry defines the external generation/flow telemetry surface
// and the HTTP client for the ENTSO-E bridge service. The bridge owns
// fetching and XML parsing; this package only consumes its JSON endpoints.
package telemetry

import (
	"context"
	"time"
)

// GenerationSample is the aggregate generation snapshot: ENTSO-E
// production-type label to MW.
type GenerationSample struct {
	Timestamp time.Time          `json:"timestamp"`
	ByType    map[string]float64 `json:"generation"`
}

// TotalMW sums the sample across production types.
func (s GenerationSample) TotalMW() float64 {
	var total float64
	for _, mw := range s.ByType {
		total += mw
	}
	return total
}

// Empty reports whether the sample carries no data.
func (s GenerationSample) Empty() bool { return len(s.ByType) == 0 }

// Flow is the cross-border exchange with one neighbouring bidding zone.
type Flow struct {
	ImportMW float64 `json:"import_mw"`
	ExportMW float64 `json:"export_mw"`
}

// NetMW is the net import into Austria.
func (f Flow) NetMW() float64 { return f.ImportMW - f.ExportMW }

// Provider supplies live telemetry. Implementations must degrade by
// returning an error rather than blocking beyond their timeout; callers fall
// back to static defaults.
type Provider interface {
	Generation(ctx context.Context) (GenerationSample, error)
	CrossBorderFlows(ctx context.Context) (map[string]Flow, error)
}
