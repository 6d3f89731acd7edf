// Package zrr resolves commune membership in the Zone de Revitalisation
// Rurale (ZRR) scheme from the published classification table.
package zrr

import "strings"

// DefaultMemberPrefixes mark the ZRR_SIMP classifications that count as
// members: fully classified communes ("C - Classée en ZRR") and partially
// classified ones ("P - Commune partiellement classée").
var DefaultMemberPrefixes = []string{"C", "P"}

// Status is the tri-state outcome of a membership check. The zero value
// means the answer is unknown, e.g. when no classification table is
// loaded or the commune code is blank.
type Status int

const (
	StatusUnknown Status = iota
	StatusNotMember
	StatusMember
)

// MarshalJSON renders the tri-state as true, false or null so consumers
// can tell "not classified" apart from "could not check".
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusMember:
		return []byte("true"), nil
	case StatusNotMember:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (s Status) String() string {
	switch s {
	case StatusMember:
		return "member"
	case StatusNotMember:
		return "not_member"
	default:
		return "unknown"
	}
}

// Row is one commune entry from the classification table.
type Row struct {
	Code           string // INSEE commune code, normalized to 5 characters
	Label          string // commune name (LIBGEO)
	Classification string // raw ZRR_SIMP value
}

// Table indexes classification rows by normalized commune code.
type Table struct {
	rows     map[string]Row
	prefixes []string
}

// NewTable builds a lookup table from rows, normalizing codes on the way
// in. Rows with a blank code are dropped. When prefixes is empty the
// default member prefixes apply.
func NewTable(rows []Row, prefixes []string) *Table {
	if len(prefixes) == 0 {
		prefixes = DefaultMemberPrefixes
	}
	t := &Table{
		rows:     make(map[string]Row, len(rows)),
		prefixes: prefixes,
	}
	for _, r := range rows {
		code := NormalizeCode(r.Code)
		if code == "" {
			continue
		}
		r.Code = code
		t.rows[code] = r
	}
	return t
}

// Len reports the number of communes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table holds no rows, in which case every
// check comes back StatusUnknown.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Members counts the communes whose classification marks them as
// ZRR members.
func (t *Table) Members() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, r := range t.rows {
		if t.member(r) {
			n++
		}
	}
	return n
}

// Lookup fetches the row for a commune code, normalizing it first.
func (t *Table) Lookup(code string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	r, ok := t.rows[NormalizeCode(code)]
	return r, ok
}

func (t *Table) member(r Row) bool {
	for _, p := range t.prefixes {
		if strings.HasPrefix(r.Classification, p) {
			return true
		}
	}
	return false
}

// Check reports whether the commune identified by code sits in a ZRR.
// The commune label is looked up for members only; non-member answers
// keep an empty label whether or not the table has a row for the code.
// A blank code or a missing table yields StatusUnknown; a commune absent
// from a populated table is treated as not classified.
func Check(code string, table *Table) (Status, string) {
	if NormalizeCode(code) == "" || table.Empty() {
		return StatusUnknown, ""
	}
	row, ok := table.Lookup(code)
	if !ok {
		return StatusNotMember, ""
	}
	if table.member(row) {
		return StatusMember, row.Label
	}
	return StatusNotMember, ""
}

// NormalizeCode canonicalizes an INSEE commune code: surrounding space is
// trimmed, a trailing ".0" left over from spreadsheet numeric cells is
// cut, and short codes are left-padded with zeros to five characters.
// Corsican codes such as "2A004" already have five characters and pass
// through unchanged.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimSuffix(code, ".0")
	if code == "" {
		return ""
	}
	if len(code) < 5 {
		code = strings.Repeat("0", 5-len(code)) + code
	}
	return code
}
