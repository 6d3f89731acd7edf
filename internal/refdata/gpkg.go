package refdata

import (
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/qpv"
)

// readGeoPackage loads zones from a GeoPackage, which is a SQLite file
// with registered feature tables. The SRS comes from the geometry column
// registry; features are read in rowid order so dataset order is stable.
func readGeoPackage(ds QPVDataset) (qpv.ZoneSet, int, error) {
	db, err := sql.Open("sqlite", ds.Path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "refdata: open geopackage")
	}
	defer db.Close() //nolint:errcheck

	table := ds.Layer
	if table == "" {
		row := db.QueryRow(`SELECT table_name FROM gpkg_contents WHERE data_type = 'features' ORDER BY table_name LIMIT 1`)
		if err := row.Scan(&table); err != nil {
			return nil, 0, eris.Wrap(err, "refdata: locate feature table")
		}
	}

	var (
		geomCol string
		srid    int
	)
	row := db.QueryRow(`SELECT column_name, srs_id FROM gpkg_geometry_columns WHERE table_name = ?`, table)
	if err := row.Scan(&geomCol, &srid); err != nil {
		return nil, 0, eris.Wrapf(err, "refdata: locate geometry column for %s", table)
	}

	query, err := featureQuery(table, geomCol, ds.Attrs)
	if err != nil {
		return nil, 0, err
	}
	rows, err := db.Query(query)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "refdata: read feature table %s", table)
	}
	defer rows.Close() //nolint:errcheck

	var zones qpv.ZoneSet
	for rows.Next() {
		var (
			blob                []byte
			code, name, commune sql.NullString
		)
		if err := rows.Scan(&blob, &code, &name, &commune); err != nil {
			return nil, 0, eris.Wrap(err, "refdata: scan feature row")
		}
		if len(blob) == 0 {
			continue
		}

		g, err := decodeGPKGGeometry(blob)
		if err != nil {
			zap.L().Debug("refdata: skipping undecodable geometry",
				zap.String("table", table), zap.String("code", code.String), zap.Error(err))
			continue
		}
		if g == nil || !usableZoneGeometry(g) {
			continue
		}

		zones = append(zones, qpv.Zone{
			Code:    code.String,
			Name:    name.String,
			Commune: commune.String,
			Geom:    g,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "refdata: iterate feature table")
	}
	return zones, srid, nil
}

func featureQuery(table, geomCol string, attrs ZoneAttrs) (string, error) {
	cols := make([]string, 0, 4)
	for _, c := range []string{geomCol, attrs.Code, attrs.Name, attrs.Commune} {
		q, err := quoteIdent(c)
		if err != nil {
			return "", err
		}
		cols = append(cols, q)
	}
	from, err := quoteIdent(table)
	if err != nil {
		return "", err
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + from + " ORDER BY rowid", nil
}

func quoteIdent(name string) (string, error) {
	if name == "" || strings.Contains(name, `"`) {
		return "", eris.Errorf("refdata: invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// decodeGPKGGeometry strips the GeoPackage binary header, a fixed part
// plus an optional envelope, and decodes the WKB payload that follows.
// An empty-geometry blob decodes to nil with no error.
func decodeGPKGGeometry(blob []byte) (geom.T, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, eris.New("refdata: not a GeoPackage geometry blob")
	}

	// Bytes 4..8 carry a per-blob srs_id; the geometry column registry
	// value wins, so the header copy is skipped along with the envelope.
	flags := blob[3]
	envSize, ok := envelopeSize((flags >> 1) & 0x07)
	if !ok {
		return nil, eris.Errorf("refdata: invalid envelope indicator %d", (flags>>1)&0x07)
	}
	offset := 8 + envSize
	if len(blob) < offset {
		return nil, eris.New("refdata: truncated GeoPackage geometry header")
	}

	if flags&0x10 != 0 { // empty geometry flag
		return nil, nil
	}

	g, err := wkb.Unmarshal(blob[offset:])
	if err != nil {
		return nil, eris.Wrap(err, "refdata: decode WKB geometry")
	}
	return g, nil
}

func envelopeSize(indicator byte) (int, bool) {
	switch indicator {
	case 0:
		return 0, true
	case 1:
		return 32, true
	case 2, 3:
		return 48, true
	case 4:
		return 64, true
	default:
		return 0, false
	}
}
