package analysis

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/ban"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/sirene"
)

// Validation sentinels, surfaced as client errors by the API layer.
var (
	ErrInvalidSIRET = eris.New("analysis: SIRET must contain exactly 14 digits")
	ErrEmptyAddress = eris.New("analysis: empty address query")
)

// Location is a resolved query subject.
type Location struct {
	Kind        string
	CompanyName string      // empty on the address path
	Address     string      // one-line postal address
	CityCode    string      // 5-character INSEE commune code
	Point       *geom.Point // WGS84 lon/lat, nil when geocoding failed
}

// Resolver turns raw SIRET and address queries into locations.
type Resolver struct {
	sirene sirene.Client
	ban    ban.Client
}

// NewResolver assembles a resolver over the two upstream clients.
func NewResolver(sireneClient sirene.Client, banClient ban.Client) *Resolver {
	return &Resolver{sirene: sireneClient, ban: banClient}
}

// NormalizeSIRET strips every non-digit (users paste SIRETs with spaces
// and dots) and verifies exactly 14 digits remain.
func NormalizeSIRET(raw string) (string, error) {
	var b strings.Builder
	b.Grow(14)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	siret := b.String()
	if len(siret) != 14 {
		return "", eris.Wrapf(ErrInvalidSIRET, "got %d digits", len(siret))
	}
	return siret, nil
}

// ResolveSIRET looks the establishment up in the Sirene registry, then
// geocodes its registered address. Geocoding is best effort on this path:
// the registry already provides the commune code, so a failed lookup only
// leaves the zone-proximity fields unanswered.
func (r *Resolver) ResolveSIRET(ctx context.Context, raw string) (*Location, error) {
	siret, err := NormalizeSIRET(raw)
	if err != nil {
		return nil, err
	}

	etab, err := r.sirene.Etablissement(ctx, siret)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: registry lookup for %s", siret)
	}

	loc := &Location{
		Kind:        KindSIRET,
		CompanyName: etab.DisplayName(),
		Address:     etab.Adresse.OneLine(),
		CityCode:    etab.Adresse.CodeCommune,
	}

	if loc.Address == "" {
		zap.L().Warn("establishment has no usable address",
			zap.String("siret", siret))
		return loc, nil
	}
	best, err := r.ban.Best(ctx, loc.Address)
	if err != nil {
		zap.L().Warn("geocoding failed, zone proximity unavailable",
			zap.String("siret", siret),
			zap.String("address", loc.Address),
			zap.Error(err))
		return loc, nil
	}
	loc.Point = geom.NewPointFlat(geom.XY, []float64{best.Longitude, best.Latitude})
	return loc, nil
}

// ResolveAddress geocodes a free-text address. Unlike the SIRET path the
// geocoder is the only source of position and commune, so its failures
// are fatal here; ban.ErrNoMatch passes through for the caller to map.
func (r *Resolver) ResolveAddress(ctx context.Context, text string) (*Location, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyAddress
	}

	best, err := r.ban.Best(ctx, text)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: geocode address")
	}

	return &Location{
		Kind:     KindAddress,
		Address:  best.Label,
		CityCode: best.CityCode,
		Point:    geom.NewPointFlat(geom.XY, []float64{best.Longitude, best.Latitude}),
	}, nil
}
