package main

import (
	"github.com/rotisserie/eris"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/analysis"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/refdata"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/ban"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/sirene"
)

// appEnv holds the loaded reference data and the analyzer shared by the
// query commands and the server.
type appEnv struct {
	Store    *refdata.Store
	Analyzer *analysis.Analyzer
}

// datasetManifest assembles the dataset manifest from configuration: an
// explicit manifest file wins, then the per-dataset overrides, then the
// built-in defaults.
func datasetManifest() (refdata.Manifest, error) {
	m := refdata.DefaultManifest()
	if cfg.Data.Manifest != "" {
		loaded, err := refdata.LoadManifest(cfg.Data.Manifest)
		if err != nil {
			return refdata.Manifest{}, err
		}
		m = loaded
	}
	if cfg.Data.QPVPath != "" {
		m.QPV.Path = cfg.Data.QPVPath
	}
	if cfg.Data.QPVLayer != "" {
		m.QPV.Layer = cfg.Data.QPVLayer
	}
	if cfg.Data.ZRRPath != "" {
		m.ZRR.Path = cfg.Data.ZRRPath
	}
	return m, nil
}

// initApp loads the reference datasets and wires the upstream clients
// into an analyzer.
func initApp() (*appEnv, error) {
	m, err := datasetManifest()
	if err != nil {
		return nil, err
	}

	store := refdata.NewStore(m)
	if err := store.Load(); err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}

	sireneClient := sirene.NewClient(cfg.Sirene.APIKey,
		sirene.WithBaseURL(cfg.Sirene.BaseURL),
		sirene.WithRateLimit(cfg.Sirene.RateLimit),
	)
	banClient := ban.NewClient(
		ban.WithBaseURL(cfg.BAN.BaseURL),
		ban.WithRateLimit(cfg.BAN.RateLimit),
		ban.WithCache(cfg.BAN.CacheSize),
	)

	resolver := analysis.NewResolver(sireneClient, banClient)
	return &appEnv{
		Store:    store,
		Analyzer: analysis.NewAnalyzer(resolver, store),
	}, nil
}
