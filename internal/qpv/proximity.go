package qpv

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/projection"
)

// ProximityThresholdKM is the radius, boundary included, under which a
// point is flagged as close to a quartier prioritaire.
const ProximityThresholdKM = 1.0

// ZoneInfo identifies a quartier in rendered results.
type ZoneInfo struct {
	Code    string `json:"code_qp"`
	Name    string `json:"lib_qp"`
	Commune string `json:"commune_qp"`
}

// NearestZone pairs a quartier with its distance from the query point.
type NearestZone struct {
	ZoneInfo
	DistanceKM float64 `json:"distance_km"`
}

// Proximity is the QPV answer for one point. Within lists every quartier
// containing the point, in dataset order; DistanceKM is zero when the
// point is contained.
type Proximity struct {
	Contained   bool         `json:"est_dans_qpv"`
	Within      []ZoneInfo   `json:"qpv_dans_lesquels"`
	DistanceKM  float64      `json:"distance_km"`
	WithinOneKM bool         `json:"a_moins_1km_qpv"`
	Nearest     *NearestZone `json:"qpv_plus_proche"`
}

// ComputeProximity projects a WGS84 point into Lambert-93 and scores it
// against every zone. It returns nil when the point is unknown or the
// zone set is empty, meaning no answer rather than a negative one.
func ComputeProximity(pt *geom.Point, zones ZoneSet) *Proximity {
	if pt == nil || zones.Empty() {
		return nil
	}
	x, y := projection.Lambert93(pt.X(), pt.Y())
	return ComputeProximityPlanar(geom.Coord{x, y}, zones)
}

// ComputeProximityPlanar scores an already-projected planar point, in
// Lambert-93 metres, against every zone in a single pass.
func ComputeProximityPlanar(p geom.Coord, zones ZoneSet) *Proximity {
	if zones.Empty() {
		return nil
	}

	prox := &Proximity{Within: []ZoneInfo{}}
	best := math.MaxFloat64
	var nearest *NearestZone

	for i := range zones {
		z := zones[i]
		if z.Geom == nil {
			continue
		}

		var d float64
		if contains(z.Geom, p) {
			prox.Contained = true
			prox.Within = append(prox.Within, z.Info())
		} else {
			d = boundaryDistance(z.Geom, p)
		}

		// Strict comparison: the earliest zone keeps a tied distance.
		if d < best {
			best = d
			nearest = &NearestZone{ZoneInfo: z.Info(), DistanceKM: d / 1000}
		}
	}

	if nearest == nil {
		return nil
	}

	prox.DistanceKM = nearest.DistanceKM
	prox.WithinOneKM = prox.DistanceKM <= ProximityThresholdKM
	prox.Nearest = nearest
	return prox
}
