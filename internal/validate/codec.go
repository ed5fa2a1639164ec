package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalJSON keeps column order, which a map would lose.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		var v any
		if i < len(r.Values) {
			v = jsonSafe(r.Values[i])
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("validate: marshal column %q: %w", c, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object in document order. Numbers are kept as
// json.Number so big integers survive decoding.
func (r *Record) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*r = Record{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("validate: record must be a JSON object")
	}

	out := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("validate: bad record key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("validate: record column %q: %w", key, err)
		}
		out.Columns = append(out.Columns, key)
		out.Values = append(out.Values, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// UnmarshalYAML decodes a mapping node in document order.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("validate: record must be a mapping (line %d)", node.Line)
	}

	out := Record{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("validate: record column %q: %w", key, err)
		}
		out.Columns = append(out.Columns, key)
		out.Values = append(out.Values, v)
	}

	*r = out
	return nil
}

func (r Record) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, c := range r.Columns {
		var v any
		if i < len(r.Values) {
			v = r.Values[i]
		}
		vn := &yaml.Node{}
		if err := vn.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}, vn)
	}
	return n, nil
}

func (e *ExpectedOutput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.Kind = Kind(strings.ToLower(strings.TrimSpace(raw.Type)))
	v, err := decodeJSONPayload(e.Kind, raw.Value)
	if err != nil {
		return fmt.Errorf("validate: %s payload: %w", e.Kind, err)
	}
	e.Value = v
	return nil
}

func (e *ExpectedOutput) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Type  string    `yaml:"type"`
		Value yaml.Node `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	e.Kind = Kind(strings.ToLower(strings.TrimSpace(raw.Type)))
	v, err := decodeYAMLPayload(e.Kind, &raw.Value)
	if err != nil {
		return fmt.Errorf("validate: %s payload: %w", e.Kind, err)
	}
	e.Value = v
	return nil
}

// Payloads that do not fit the typed shape are kept generic so the
// comparator can report the mismatch as a failed verdict.
func decodeJSONPayload(k Kind, raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch {
	case raw[0] == '[' && (k == KindTable || k == KindCount):
		var rs ResultSet
		if err := json.Unmarshal(raw, &rs); err == nil {
			return rs, nil
		}
	case raw[0] == '{':
		var rec Record
		if err := json.Unmarshal(raw, &rec); err == nil {
			return rec, nil
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeYAMLPayload(k Kind, node *yaml.Node) (any, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}

	switch {
	case node.Kind == yaml.SequenceNode && (k == KindTable || k == KindCount):
		var rs ResultSet
		if err := node.Decode(&rs); err == nil {
			return rs, nil
		}
	case node.Kind == yaml.MappingNode:
		var rec Record
		if err := node.Decode(&rec); err == nil {
			return rec, nil
		}
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Sprint(x)
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Sprint(x)
		}
	}
	return v
}
