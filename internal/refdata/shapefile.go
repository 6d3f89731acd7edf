package refdata

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
)

// readShapefile loads zones from an ESRI shapefile. The CRS comes from
// the .prj sidecar; a shapefile without one has no declared CRS.
func readShapefile(path string, attrs ZoneAttrs) (qpv.ZoneSet, int, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "refdata: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	srid, err := shapefileSRID(path)
	if err != nil {
		return nil, 0, err
	}

	codeIdx := fieldIndex(reader, attrs.Code)
	nameIdx := fieldIndex(reader, attrs.Name)
	communeIdx := fieldIndex(reader, attrs.Commune)
	if codeIdx < 0 {
		return nil, 0, eris.Errorf("refdata: shapefile field %q not found", attrs.Code)
	}

	var zones qpv.ZoneSet
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}
		g := shapePolygonToGeom(poly)
		if g == nil {
			continue
		}
		zones = append(zones, qpv.Zone{
			Code:    attribute(reader, codeIdx),
			Name:    attribute(reader, nameIdx),
			Commune: attribute(reader, communeIdx),
			Geom:    g,
		})
	}
	return zones, srid, nil
}

// shapePolygonToGeom rebuilds a shapefile polygon as a geom.MultiPolygon.
// Shapefile parts are rings in one flat list: outer boundaries wind
// clockwise, holes counter-clockwise, and each hole belongs to the most
// recent outer ring.
func shapePolygonToGeom(p *shp.Polygon) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var polys []*geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			zap.L().Debug("refdata: skipping degenerate shapefile ring", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if xy.IsRingCounterClockwise(geom.XY, flat) && len(polys) > 0 {
			if err := polys[len(polys)-1].Push(ring); err != nil {
				zap.L().Debug("refdata: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("refdata: skipping malformed outer ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		polys = append(polys, poly)
	}

	if len(polys) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for _, poly := range polys {
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("refdata: skipping malformed polygon part", zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// shapefileSRID reads the .prj sidecar next to the .shp file. A missing
// sidecar means no declared CRS.
func shapefileSRID(path string) (int, error) {
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	data, err := os.ReadFile(prj)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "refdata: read %s", prj)
	}
	return sridFromWKT(string(data))
}

var wktAuthorityRe = regexp.MustCompile(`AUTHORITY\["EPSG",\s*"?(\d+)"?\]`)

// sridFromWKT matches a .prj's WKT against the two supported systems.
// Full WKT parsing is out of scope: the outermost authority code decides
// when present, otherwise the coordinate system name.
func sridFromWKT(wkt string) (int, error) {
	if ms := wktAuthorityRe.FindAllStringSubmatch(wkt, -1); len(ms) > 0 {
		// Nested elements carry their own authorities; the outermost
		// one comes last in the text.
		srid, err := strconv.Atoi(ms[len(ms)-1][1])
		if err == nil {
			return srid, nil
		}
	}

	name := wktSystemName(wkt)
	upper := strings.ToUpper(name)
	switch {
	case name == "":
		return 0, nil
	case strings.Contains(upper, "LAMBERT") && (strings.Contains(upper, "93") || strings.Contains(upper, "RGF")):
		return epsgLambert93, nil
	case strings.Contains(upper, "WGS") && strings.Contains(upper, "84"):
		return epsgWGS84, nil
	default:
		return 0, &UnsupportedCRSError{CRS: name}
	}
}

// wktSystemName extracts the quoted name right after PROJCS[ or GEOGCS[.
func wktSystemName(wkt string) string {
	for _, kw := range []string{"PROJCS", "GEOGCS"} {
		i := strings.Index(wkt, kw)
		if i < 0 {
			continue
		}
		rest := wkt[i:]
		start := strings.Index(rest, `"`)
		if start < 0 {
			continue
		}
		if end := strings.Index(rest[start+1:], `"`); end >= 0 {
			return rest[start+1 : start+1+end]
		}
	}
	return ""
}

// fieldIndex returns the index of a named DBF field, or -1. Field names
// are fixed-width and zero-padded on disk.
func fieldIndex(reader *shp.Reader, name string) int {
	if name == "" {
		return -1
	}
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(reader.Attribute(idx))
}
