// Package analysis answers QPV and ZRR eligibility queries: it resolves a
// SIRET or free-text address to a location, then merges the priority-zone
// proximity and rural-revitalization answers into one result record.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/metrics"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/zrr"
)

// LocationResolver turns raw queries into resolved locations.
type LocationResolver interface {
	ResolveSIRET(ctx context.Context, raw string) (*Location, error)
	ResolveAddress(ctx context.Context, text string) (*Location, error)
}

// ReferenceData serves the loaded reference datasets.
type ReferenceData interface {
	Zones() qpv.ZoneSet
	Communes() *zrr.Table
}

// Analyzer runs eligibility queries end to end.
type Analyzer struct {
	resolver LocationResolver
	data     ReferenceData
}

// NewAnalyzer assembles an analyzer over a resolver and reference data.
func NewAnalyzer(resolver LocationResolver, data ReferenceData) *Analyzer {
	return &Analyzer{resolver: resolver, data: data}
}

// AnalyzeSIRET resolves an establishment by SIRET and answers both zone
// questions for it.
func (a *Analyzer) AnalyzeSIRET(ctx context.Context, raw string) (*Result, error) {
	loc, err := a.resolver.ResolveSIRET(ctx, raw)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(KindSIRET).Inc()
		return nil, err
	}
	return a.assemble(loc), nil
}

// AnalyzeAddress geocodes a free-text address and answers both zone
// questions for it.
func (a *Analyzer) AnalyzeAddress(ctx context.Context, text string) (*Result, error) {
	loc, err := a.resolver.ResolveAddress(ctx, text)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(KindAddress).Inc()
		return nil, err
	}
	return a.assemble(loc), nil
}

func (a *Analyzer) assemble(loc *Location) *Result {
	status, label := zrr.Check(loc.CityCode, a.data.Communes())
	proximity := qpv.ComputeProximity(loc.Point, a.data.Zones())

	metrics.AnalysesTotal.WithLabelValues(loc.Kind).Inc()
	if proximity != nil && proximity.Contained {
		metrics.QPVContained.Inc()
	}

	return &Result{
		ID:          uuid.NewString(),
		Kind:        loc.Kind,
		Timestamp:   time.Now().UTC(),
		CompanyName: loc.CompanyName,
		Address:     loc.Address,
		CityCode:    loc.CityCode,
		ZRR:         status,
		ZRRLabel:    label,
		QPV:         proximity,
	}
}
