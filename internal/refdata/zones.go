package refdata

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/projection"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
)

const (
	epsgWGS84     = 4326
	epsgLambert93 = 2154
)

// LoadZones reads a QPV dataset. The format follows the file extension:
// .gpkg, .geojson/.json or .shp. Geometries come out in Lambert-93
// planar metres whatever the source CRS; a dataset without a declared
// CRS, or in an unsupported one, is rejected. A missing file yields an
// empty set and no error, which disables QPV answers.
func LoadZones(ds QPVDataset) (qpv.ZoneSet, error) {
	if ds.Path == "" {
		return nil, nil
	}
	if _, err := os.Stat(ds.Path); os.IsNotExist(err) {
		zap.L().Warn("refdata: zone dataset missing, QPV answers disabled", zap.String("path", ds.Path))
		return nil, nil
	}

	var (
		zones qpv.ZoneSet
		srid  int
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(ds.Path)); ext {
	case ".gpkg":
		zones, srid, err = readGeoPackage(ds)
	case ".geojson", ".json":
		zones, srid, err = readGeoJSON(ds.Path, ds.Attrs)
	case ".shp":
		zones, srid, err = readShapefile(ds.Path, ds.Attrs)
	default:
		return nil, eris.Errorf("refdata: unsupported zone dataset format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return projectZones(zones, srid)
}

// projectZones moves a freshly loaded set into Lambert-93. Reprojection
// happens here exactly once; everything downstream assumes planar metres.
func projectZones(zones qpv.ZoneSet, srid int) (qpv.ZoneSet, error) {
	switch srid {
	case epsgLambert93:
		return zones, nil
	case epsgWGS84:
		for i := range zones {
			projectGeom(zones[i].Geom)
		}
		return zones, nil
	case 0, -1:
		// GeoPackage reserves 0 and -1 for "undefined" systems.
		return nil, ErrMissingCRS
	default:
		return nil, &UnsupportedCRSError{CRS: "EPSG:" + strconv.Itoa(srid)}
	}
}

// projectGeom converts WGS84 coordinates to Lambert-93 in place, two
// values per vertex whatever the layout.
func projectGeom(g geom.T) {
	if g == nil {
		return
	}
	fc := g.FlatCoords()
	stride := g.Stride()
	if stride < 2 {
		return
	}
	for i := 0; i+1 < len(fc); i += stride {
		fc[i], fc[i+1] = projection.Lambert93(fc[i], fc[i+1])
	}
}

// usableZoneGeometry filters a zone dataset down to area geometries.
func usableZoneGeometry(g geom.T) bool {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return true
	default:
		return false
	}
}

