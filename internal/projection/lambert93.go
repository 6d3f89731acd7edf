// Package projection converts geographic coordinates to the projected
// planes used by French national reference datasets.
package projection

import "math"

// RGF93 / Lambert-93 (EPSG:2154) parameters on the GRS80 ellipsoid.
// RGF93 is aligned with WGS84 to centimetre level, so WGS84 longitude
// and latitude can be projected directly.
const (
	semiMajor  = 6378137.0
	flattening = 1.0 / 298.257222101

	originLatDeg    = 46.5
	centralMeridian = 3.0
	parallel1Deg    = 44.0
	parallel2Deg    = 49.0
	falseEasting    = 700000.0
	falseNorthing   = 6600000.0
)

var (
	ecc = math.Sqrt(2*flattening - flattening*flattening)

	coneN float64 // cone constant
	aF    float64 // a * F, precomputed radius factor
	rho0  float64 // radius at the latitude of origin
)

func init() {
	phi0 := radians(originLatDeg)
	phi1 := radians(parallel1Deg)
	phi2 := radians(parallel2Deg)

	m1 := gridFactor(phi1)
	m2 := gridFactor(phi2)
	t0 := isoFactor(phi0)
	t1 := isoFactor(phi1)
	t2 := isoFactor(phi2)

	coneN = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	aF = semiMajor * m1 / (coneN * math.Pow(t1, coneN))
	rho0 = aF * math.Pow(t0, coneN)
}

// Lambert93 projects a longitude/latitude pair, in decimal degrees, onto
// the Lambert-93 plane. The results are metres east and north of the grid
// origin, matching the official EPSG:2154 definition.
func Lambert93(lon, lat float64) (x, y float64) {
	rho := aF * math.Pow(isoFactor(radians(lat)), coneN)
	theta := coneN * radians(lon-centralMeridian)
	x = falseEasting + rho*math.Sin(theta)
	y = falseNorthing + rho0 - rho*math.Cos(theta)
	return x, y
}

// gridFactor is the m(phi) term of the conformal conic: the radius of the
// parallel at phi, scaled by the ellipsoid.
func gridFactor(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-ecc*ecc*s*s)
}

// isoFactor is the t(phi) term: the isometric colatitude mapped onto the
// cone, corrected for the ellipsoid eccentricity.
func isoFactor(phi float64) float64 {
	es := ecc * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-es)/(1+es), ecc/2)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
