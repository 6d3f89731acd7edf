package refdata

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/zrr"
)

// LoadZRRTable reads the commune classification table. The format
// follows the file extension: .csv or .xlsx. Columns are located by
// header name after skipping the preamble rows. A missing file yields an
// empty table and no error, which turns membership checks into "unknown".
func LoadZRRTable(ds ZRRDataset) (*zrr.Table, error) {
	if ds.Path == "" {
		return zrr.NewTable(nil, ds.MemberPrefixes), nil
	}
	if _, err := os.Stat(ds.Path); os.IsNotExist(err) {
		zap.L().Warn("refdata: classification table missing, ZRR answers disabled", zap.String("path", ds.Path))
		return zrr.NewTable(nil, ds.MemberPrefixes), nil
	}

	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(ds.Path)); ext {
	case ".csv":
		rows, err = readCSVRows(ds)
	case ".xlsx":
		rows, err = readXLSXRows(ds)
	default:
		return nil, eris.Errorf("refdata: unsupported classification table format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return tableFromRows(rows, ds)
}

// tableFromRows turns header-plus-data rows into a lookup table. The
// code and classification columns are required; the label column is
// tolerated missing.
func tableFromRows(rows [][]string, ds ZRRDataset) (*zrr.Table, error) {
	if len(rows) == 0 {
		return nil, eris.Errorf("refdata: classification table %s has no header row after %d skipped rows", ds.Path, ds.SkipRows)
	}

	header := rows[0]
	codeIdx := columnIndex(header, ds.Columns.Code)
	labelIdx := columnIndex(header, ds.Columns.Label)
	classIdx := columnIndex(header, ds.Columns.Class)
	if codeIdx < 0 || classIdx < 0 {
		return nil, eris.Errorf("refdata: columns %q and %q not found in classification header %v",
			ds.Columns.Code, ds.Columns.Class, header)
	}

	entries := make([]zrr.Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if codeIdx >= len(row) {
			continue
		}
		r := zrr.Row{Code: row[codeIdx]}
		if labelIdx >= 0 && labelIdx < len(row) {
			r.Label = strings.TrimSpace(row[labelIdx])
		}
		if classIdx < len(row) {
			r.Classification = strings.TrimSpace(row[classIdx])
		}
		entries = append(entries, r)
	}
	return zrr.NewTable(entries, ds.MemberPrefixes), nil
}

// columnIndex matches a header cell case-insensitively, shrugging off
// surrounding space and a UTF-8 BOM on the first cell.
func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func readCSVRows(ds ZRRDataset) ([][]string, error) {
	f, err := os.Open(ds.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", ds.Path)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if ds.Encoding != "" {
		enc, err := htmlindex.Get(ds.Encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: unsupported encoding %q", ds.Encoding)
		}
		r = enc.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // preamble lines are ragged
	reader.LazyQuotes = true
	if ds.Delimiter != "" {
		reader.Comma = []rune(ds.Delimiter)[0]
	}

	var rows [][]string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "refdata: read csv row")
		}
		if i < ds.SkipRows {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSXRows(ds ZRRDataset) ([][]string, error) {
	f, err := xlsx.OpenFile(ds.Path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open xlsx")
	}

	sheet, err := pickSheet(f, ds.Sheet)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < ds.SkipRows {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("refdata: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("refdata: workbook has no sheets")
	}
	return f.Sheets[0], nil
}
