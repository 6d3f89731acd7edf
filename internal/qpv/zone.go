// Package qpv scores points against the Quartiers Prioritaires de la
// Ville (QPV) polygon set: containment, distance to the nearest quartier
// and the one-kilometre proximity flag.
package qpv

import "github.com/twpayne/go-geom"

// Zone is one quartier prioritaire with its identifying attributes. Geom
// is a Polygon or MultiPolygon in Lambert-93 planar metres.
type Zone struct {
	Code    string // code_qp, e.g. "QP093028"
	Name    string // lib_qp
	Commune string // lib_com
	Geom    geom.T
}

// Info returns the zone's identifying attributes for rendering.
func (z Zone) Info() ZoneInfo {
	return ZoneInfo{Code: z.Code, Name: z.Name, Commune: z.Commune}
}

// ZoneSet is an ordered collection of zones. Order matters: containment
// lists follow dataset order and nearest-zone ties go to the earliest
// zone.
type ZoneSet []Zone

// Empty reports whether the set holds no zones, in which case proximity
// answers are unavailable.
func (zs ZoneSet) Empty() bool { return len(zs) == 0 }
