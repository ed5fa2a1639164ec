package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Kind selects the comparison applied to an ExpectedOutput.
type Kind string

const (
	KindTable       Kind = "table"
	KindCount       Kind = "count"
	KindSingleValue Kind = "single_value"
	KindColumn      Kind = "column"
	KindRow         Kind = "row"
)

// Kinds lists every recognized kind in declaration order.
var Kinds = []Kind{KindTable, KindCount, KindSingleValue, KindColumn, KindRow}

// ParseKind maps a stored type tag to a Kind. Unknown tags return an error.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k, nil
	}
	return k, fmt.Errorf("validate: unknown expected output kind %q", s)
}

func (k Kind) Valid() bool {
	switch k {
	case KindTable, KindCount, KindSingleValue, KindColumn, KindRow:
		return true
	}
	return false
}

// Record is one result row: an ordered column -> value mapping.
// Columns and Values are parallel slices.
type Record struct {
	Columns []string
	Values  []any
}

// NewRecord builds a Record from alternating name/value pairs.
// A trailing name without a value is ignored.
func NewRecord(kv ...any) Record {
	r := Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			name = fmt.Sprint(kv[i])
		}
		r.Columns = append(r.Columns, name)
		r.Values = append(r.Values, kv[i+1])
	}
	return r
}

// RecordFromMap converts a map into a Record. Go maps are unordered, so
// columns are sorted by name to keep iteration deterministic.
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Record{Columns: keys, Values: make([]any, len(keys))}
	for i, k := range keys {
		r.Values[i] = m[k]
	}
	return r
}

func (r Record) Len() int { return len(r.Columns) }

// Get returns the value of the first column whose name matches case-insensitively.
func (r Record) Get(name string) (any, bool) {
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// ResultSet is the sequence of rows a query produced. No ordering is assumed.
type ResultSet []Record

// FromRows builds a ResultSet from executor output: column names plus
// positional rows. Missing trailing values become nil.
func FromRows(columns []string, rows [][]any) ResultSet {
	rs := make(ResultSet, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Columns: append([]string(nil), columns...),
			Values:  make([]any, len(columns)),
		}
		copy(rec.Values, row)
		rs = append(rs, rec)
	}
	return rs
}

// ExpectedOutput is the author-specified answer for an assignment or test case.
//
// Value depends on Kind:
//
//	table        ResultSet, []Record or a slice of maps
//	count        an integer, a ResultSet or a single-key Record
//	single_value a scalar
//	column       a slice of scalars
//	row          a Record or map
type ExpectedOutput struct {
	Kind  Kind `json:"type" yaml:"type"`
	Value any  `json:"value" yaml:"value"`
}

// Verdict is the outcome of one comparison. Diagnostic is advisory and
// only meant for logs and humans.
type Verdict struct {
	Passed     bool   `json:"passed"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func pass() Verdict { return Verdict{Passed: true} }

func failf(format string, args ...any) Verdict {
	return Verdict{Diagnostic: fmt.Sprintf(format, args...)}
}
