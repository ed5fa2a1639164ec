package validate

import (
	"errors"
	"fmt"
	"reflect"
)

var errNoPayload = errors.New("missing payload")

func asResultSet(v any) (ResultSet, error) {
	switch x := v.(type) {
	case nil:
		return nil, errNoPayload
	case ResultSet:
		return x, nil
	case []Record:
		return ResultSet(x), nil
	case []map[string]any:
		rs := make(ResultSet, len(x))
		for i, m := range x {
			rs[i] = RecordFromMap(m)
		}
		return rs, nil
	case []any:
		rs := make(ResultSet, len(x))
		for i, el := range x {
			rec, ok := recordOf(el)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a row", i, el)
			}
			rs[i] = rec
		}
		return rs, nil
	}
	return nil, fmt.Errorf("expected a sequence of rows, got %T", v)
}

func recordOf(v any) (Record, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case *Record:
		if x == nil {
			return Record{}, false
		}
		return *x, true
	case map[string]any:
		return RecordFromMap(x), true
	}
	return Record{}, false
}

func asRecord(v any) (Record, error) {
	if v == nil {
		return Record{}, errNoPayload
	}
	if rec, ok := recordOf(v); ok {
		return rec, nil
	}
	if rs, err := asResultSet(v); err == nil {
		if len(rs) != 1 {
			return Record{}, fmt.Errorf("expected a single row, got %d rows", len(rs))
		}
		return rs[0], nil
	}
	return Record{}, fmt.Errorf("expected a row, got %T", v)
}

// asScalars flattens a column payload. Single-column rows contribute their value.
func asScalars(v any) ([]any, error) {
	if v == nil {
		return nil, errNoPayload
	}
	if rs, ok := v.(ResultSet); ok {
		out := make([]any, len(rs))
		for i, r := range rs {
			if r.Len() != 1 {
				return nil, fmt.Errorf("element %d has %d columns, want 1", i, r.Len())
			}
			out[i] = r.Values[0]
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, fmt.Errorf("expected a sequence of values, got %T", v)
	}

	out := make([]any, rv.Len())
	for i := range out {
		el := rv.Index(i).Interface()
		if rec, ok := recordOf(el); ok {
			if rec.Len() != 1 {
				return nil, fmt.Errorf("element %d has %d columns, want 1", i, rec.Len())
			}
			el = rec.Values[0]
		}
		out[i] = el
	}
	return out, nil
}

func isRowShaped(v any) bool {
	if _, ok := recordOf(v); ok {
		return true
	}
	switch v.(type) {
	case ResultSet, []Record, []map[string]any, []any:
		return true
	}
	return false
}

// countOf derives an integer from an expected count payload: a number, a
// single-column row, or any sequence (its length).
func (v *Validator) countOf(payload any) (int64, error) {
	if payload == nil {
		return 0, errNoPayload
	}
	if rec, ok := recordOf(payload); ok {
		if rec.Len() != 1 || len(rec.Values) != 1 {
			return 0, fmt.Errorf("count row must have exactly one column, got %d", rec.Len())
		}
		return v.toCount(rec.Values[0])
	}
	if rs, ok := payload.(ResultSet); ok {
		return int64(len(rs)), nil
	}

	rv := reflect.ValueOf(payload)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		return int64(rv.Len()), nil
	}
	return v.toCount(payload)
}

func (v *Validator) toCount(raw any) (int64, error) {
	switch n := normalizeValue(raw, v.precision).(type) {
	case int64:
		return n, nil
	case nil:
		return 0, fmt.Errorf("count is null")
	default:
		return 0, fmt.Errorf("count %v (%T) is not an integer", raw, raw)
	}
}
