package refdata

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
)

// readGeoJSON loads zones from a GeoJSON feature collection. RFC 7946
// dropped the "crs" member, but national open-data exports still carry
// the legacy field and the loader requires it: a collection without a
// declared CRS is rejected rather than assumed to be WGS84.
func readGeoJSON(path string, attrs ZoneAttrs) (qpv.ZoneSet, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "refdata: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, eris.Wrap(err, "refdata: parse GeoJSON")
	}

	srid, err := geoJSONSRID(data)
	if err != nil {
		return nil, 0, err
	}

	var zones qpv.ZoneSet
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !usableZoneGeometry(f.Geometry) {
			zap.L().Debug("refdata: skipping non-polygonal GeoJSON feature",
				zap.String("code", propString(f.Properties, attrs.Code)))
			continue
		}
		zones = append(zones, qpv.Zone{
			Code:    propString(f.Properties, attrs.Code),
			Name:    propString(f.Properties, attrs.Name),
			Commune: propString(f.Properties, attrs.Commune),
			Geom:    f.Geometry,
		})
	}
	return zones, srid, nil
}

// geoJSONSRID pulls the EPSG code out of the legacy top-level "crs"
// member, e.g. "urn:ogc:def:crs:EPSG::2154". The OGC CRS84 identifier is
// WGS84 with the same axis order GeoJSON already mandates.
func geoJSONSRID(data []byte) (int, error) {
	var doc struct {
		CRS *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, eris.Wrap(err, "refdata: parse GeoJSON crs member")
	}
	if doc.CRS == nil || doc.CRS.Properties.Name == "" {
		return 0, nil
	}

	name := doc.CRS.Properties.Name
	if strings.EqualFold(name, "urn:ogc:def:crs:OGC:1.3:CRS84") || strings.EqualFold(name, "CRS84") {
		return epsgWGS84, nil
	}
	if i := strings.LastIndex(name, ":"); i >= 0 {
		if srid, err := strconv.Atoi(name[i+1:]); err == nil {
			return srid, nil
		}
	}
	return 0, &UnsupportedCRSError{CRS: name}
}

func propString(props map[string]interface{}, key string) string {
	if props == nil || key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
