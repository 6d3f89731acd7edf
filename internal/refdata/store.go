// Package refdata loads and serves the reference datasets: the QPV
// polygon set and the ZRR commune classification table. Datasets come
// from a YAML manifest describing where the files live and how to read
// them; sensible defaults match the official national exports.
package refdata

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/zrr"
)

// Store owns the reference datasets. Load runs once; afterwards the
// accessors are safe for concurrent use.
type Store struct {
	manifest Manifest

	once      sync.Once
	err       error
	zones     qpv.ZoneSet
	table     *zrr.Table
	loadStats Stats
}

// Stats describes what a load produced.
type Stats struct {
	ZonePath     string
	ZoneCount    int
	CommunePath  string
	CommuneCount int
	LoadedIn     time.Duration
}

// NewStore builds a store around a manifest without touching the disk.
func NewStore(m Manifest) *Store {
	return &Store{manifest: m}
}

// Load reads both datasets in parallel. It is idempotent: only the first
// call does work, every later call returns the first outcome.
func (s *Store) Load() error {
	s.once.Do(func() {
		start := time.Now()

		var g errgroup.Group
		g.Go(func() error {
			zones, err := LoadZones(s.manifest.QPV)
			if err != nil {
				return err
			}
			s.zones = zones
			return nil
		})
		g.Go(func() error {
			table, err := LoadZRRTable(s.manifest.ZRR)
			if err != nil {
				return err
			}
			s.table = table
			return nil
		})

		if s.err = g.Wait(); s.err != nil {
			return
		}

		s.loadStats = Stats{
			ZonePath:     s.manifest.QPV.Path,
			ZoneCount:    len(s.zones),
			CommunePath:  s.manifest.ZRR.Path,
			CommuneCount: s.table.Len(),
			LoadedIn:     time.Since(start),
		}
		zap.L().Info("reference data loaded",
			zap.Int("zones", s.loadStats.ZoneCount),
			zap.Int("communes", s.loadStats.CommuneCount),
			zap.Duration("elapsed", s.loadStats.LoadedIn),
		)
	})
	return s.err
}

// Zones returns the QPV polygon set. Empty means unavailable, not "no
// quartiers anywhere".
func (s *Store) Zones() qpv.ZoneSet { return s.zones }

// Communes returns the ZRR classification table.
func (s *Store) Communes() *zrr.Table { return s.table }

// Stats reports what the load produced, for logs and the datasets
// command.
func (s *Store) Stats() Stats { return s.loadStats }
