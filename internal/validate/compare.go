package validate

import (
	"slices"
)

func (v *Validator) compareTable(actual ResultSet, payload any) Verdict {
	expected, err := asResultSet(payload)
	if err != nil {
		return failf("table: %v", err)
	}
	if len(actual) != len(expected) {
		return failf("table: expected %d rows, got %d", len(expected), len(actual))
	}
	if len(actual) == 0 {
		return pass()
	}

	ok, row := v.matchRows(actual, expected)
	if ok {
		return pass()
	}
	if row >= 0 {
		return failf("table: actual row %d has no matching expected row (%s matching)", row+1, v.mode)
	}
	return failf("table: rows do not match (%s matching)", v.mode)
}

// compareCount derives the expected count first so the actual side can
// prefer a grouped row whose count column equals it.
func (v *Validator) compareCount(actual ResultSet, payload any) Verdict {
	want, err := v.countOf(payload)
	if err != nil {
		return failf("count: %v", err)
	}

	got := v.actualCount(actual, want)
	if got != want {
		return failf("count: expected %d, got %d", want, got)
	}
	return pass()
}

func (v *Validator) actualCount(actual ResultSet, want int64) int64 {
	for _, r := range actual {
		row := normalizeRecord(r, v.precision)
		col, ok := v.aliases.Resolve("count", row.Keys())
		if !ok {
			continue
		}
		val, _ := row.Lookup(col)
		if n, ok := val.(int64); ok && n == want {
			return n
		}
	}
	return int64(len(actual))
}

func (v *Validator) compareSingleValue(actual ResultSet, payload any) Verdict {
	if isRowShaped(payload) {
		return failf("single_value: expected a scalar payload, got %T", payload)
	}
	if len(actual) != 1 {
		return failf("single_value: expected exactly one row, got %d", len(actual))
	}

	want := normalizeValue(payload, v.precision)
	row := normalizeRecord(actual[0], v.precision)

	if row.Len() == 1 {
		got, _ := row.Lookup(row.Keys()[0])
		if valuesEqual(got, want, v.tolerance) {
			return pass()
		}
		return failf("single_value: expected %v, got %v", want, got)
	}

	for _, k := range row.Keys() {
		got, _ := row.Lookup(k)
		if valuesEqual(got, want, v.tolerance) {
			return pass()
		}
	}
	return failf("single_value: no column of the %d-column row equals %v", row.Len(), want)
}

// compareColumn treats both sides as multisets. A multi-column result passes
// if any one of its columns holds the expected values.
func (v *Validator) compareColumn(actual ResultSet, payload any) Verdict {
	raw, err := asScalars(payload)
	if err != nil {
		return failf("column: %v", err)
	}
	if len(actual) != len(raw) {
		return failf("column: expected %d values, got %d", len(raw), len(actual))
	}
	if len(raw) == 0 {
		return pass()
	}

	want := make([]any, len(raw))
	for i, x := range raw {
		want[i] = normalizeValue(x, v.precision)
	}
	slices.SortFunc(want, compareCanonical)

	rows := make([]CanonicalRecord, len(actual))
	for i, r := range actual {
		rows[i] = normalizeRecord(r, v.precision)
	}

	for _, col := range rows[0].Keys() {
		got, ok := columnValues(rows, col)
		if !ok {
			continue
		}
		slices.SortFunc(got, compareCanonical)
		if sortedEqual(got, want) {
			return pass()
		}
	}
	return failf("column: no result column holds the expected values")
}

func columnValues(rows []CanonicalRecord, col string) ([]any, bool) {
	out := make([]any, len(rows))
	for i, r := range rows {
		val, ok := r.Lookup(col)
		if !ok {
			return nil, false
		}
		out[i] = val
	}
	return out, true
}

func sortedEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !canonicalEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (v *Validator) compareRow(actual ResultSet, payload any) Verdict {
	want, err := asRecord(payload)
	if err != nil {
		return failf("row: %v", err)
	}
	if len(actual) != 1 {
		return failf("row: expected exactly one row, got %d", len(actual))
	}

	got := normalizeRecord(actual[0], v.precision)
	exp := normalizeRecord(want, v.precision)
	if got.Len() != exp.Len() {
		return failf("row: expected %d columns, got %d", exp.Len(), got.Len())
	}
	for _, k := range exp.Keys() {
		ev, _ := exp.Lookup(k)
		av, ok := got.Lookup(k)
		if !ok {
			return failf("row: missing column %q", k)
		}
		if !canonicalEqual(av, ev) {
			return failf("row: column %q expected %v, got %v", k, ev, av)
		}
	}
	return pass()
}
