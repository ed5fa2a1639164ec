package validate

import "strings"

// CanonicalRecord is a normalized row: lower-cased column names mapped to
// normalized values. Keys keeps first-seen column order.
type CanonicalRecord struct {
	keys   []string
	values map[string]any
}

// NormalizeRecord lower-cases column names and normalizes every value.
// Columns that collide after lower-casing keep the later value.
func NormalizeRecord(r Record) CanonicalRecord {
	return normalizeRecord(r, DefaultPrecision)
}

func normalizeRecord(r Record, precision int32) CanonicalRecord {
	out := CanonicalRecord{
		keys:   make([]string, 0, len(r.Columns)),
		values: make(map[string]any, len(r.Columns)),
	}
	for i, c := range r.Columns {
		k := strings.ToLower(c)
		if _, seen := out.values[k]; !seen {
			out.keys = append(out.keys, k)
		}
		var v any
		if i < len(r.Values) {
			v = r.Values[i]
		}
		out.values[k] = normalizeValue(v, precision)
	}
	return out
}

func (c CanonicalRecord) Keys() []string { return c.keys }

func (c CanonicalRecord) Len() int { return len(c.keys) }

// Lookup expects an already lower-cased key.
func (c CanonicalRecord) Lookup(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}
