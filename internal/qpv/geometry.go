package qpv

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// contains reports whether the planar point p falls inside g, boundary
// included. A point exactly on an exterior edge counts as inside; a point
// strictly inside an interior ring (hole) does not.
func contains(g geom.T, p geom.Coord) bool {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonContains(g, p)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), p) {
				return true
			}
		}
	}
	return false
}

func polygonContains(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	layout := poly.Layout()
	if !xy.IsPointInRing(layout, p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		// Strictly inside a hole means outside the polygon; on the hole
		// boundary still counts as inside.
		if xy.LocatePointInRing(layout, p, poly.LinearRing(i).FlatCoords()) == location.Interior {
			return false
		}
	}
	return true
}

// boundaryDistance returns the planar distance in metres from p to the
// closest ring of g. Callers check containment first; for a contained
// point the distance is zero by definition.
func boundaryDistance(g geom.T, p geom.Coord) float64 {
	minDist := math.MaxFloat64
	switch g := g.(type) {
	case *geom.Polygon:
		for i := 0; i < g.NumLinearRings(); i++ {
			d := xy.DistanceFromPointToLineString(g.Layout(), p, g.LinearRing(i).FlatCoords())
			if d < minDist {
				minDist = d
			}
		}
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if d := boundaryDistance(g.Polygon(i), p); d < minDist {
				minDist = d
			}
		}
	}
	return minDist
}
