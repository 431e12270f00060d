package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Ordered is a string-keyed map that remembers insertion order.  The zero
// value is ready to use.  Re-setting an existing key keeps its position.
type Ordered[V any] struct {
	keys  []string
	index map[string]int
	vals  []V
}

// NewOrdered returns an empty Ordered map.
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{}
}

func (o *Ordered[V]) init() {
	if o.index == nil {
		o.index = make(map[string]int)
	}
}

// Set stores v under key and reports whether key was new.
func (o *Ordered[V]) Set(key string, v V) bool {
	o.init()
	if i, ok := o.index[key]; ok {
		o.vals[i] = v
		return false
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
	return true
}

// Insert stores v under key only when key is absent.  It reports whether the
// value was stored.
func (o *Ordered[V]) Insert(key string, v V) bool {
	if o.Has(key) {
		return false
	}
	return o.Set(key, v)
}

// Update replaces the value under key with fn(old, present).
func (o *Ordered[V]) Update(key string, fn func(old V, present bool) V) {
	old, ok := o.Get(key)
	o.Set(key, fn(old, ok))
}

// Get returns the value stored under key.
func (o *Ordered[V]) Get(key string) (V, bool) {
	var zero V
	if o == nil || o.index == nil {
		return zero, false
	}
	i, ok := o.index[key]
	if !ok {
		return zero, false
	}
	return o.vals[i], true
}

// Has reports whether key is present.
func (o *Ordered[V]) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of keys.
func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Range calls fn for every entry in insertion order until fn returns false.
func (o *Ordered[V]) Range(fn func(key string, v V) bool) {
	if o == nil {
		return
	}
	for i, k := range o.keys {
		if !fn(k, o.vals[i]) {
			return
		}
	}
}

// Fields returns the keys in insertion order.  Together with Cell it lets an
// Ordered map be used directly as a dataset Record.
func (o *Ordered[V]) Fields() []string { return o.Keys() }

// Cell renders the value stored under field as text.
func (o *Ordered[V]) Cell(field string) (string, bool) {
	v, ok := o.Get(field)
	if !ok {
		return "", false
	}
	return FormatCell(v), true
}

// Finite reports whether every float value is a finite number.  Non-float
// values are always finite.
func (o *Ordered[V]) Finite() bool {
	for _, v := range o.vals {
		if f, ok := any(v).(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return false
		}
	}
	return true
}

// FormatCell renders a record value for tabular output.  Floats use the
// shortest representation that round-trips.
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, x); err != nil {
			return string(x)
		}
		return buf.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	o.Range(func(k string, v V) bool {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return false
		}
		if vb, err = json.Marshal(v); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the document.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered: expected JSON object, got %v", tok)
	}
	*o = Ordered[V]{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("ordered: expected string key, got %v", kt)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered: key %q: %w", key, err)
		}
		o.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the map as a YAML mapping with keys in insertion order.
func (o *Ordered[V]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	o.Range(func(k string, v V) bool {
		val := &yaml.Node{}
		if err = val.Encode(v); err != nil {
			return false
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			val,
		)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

//Personal.AI order the ending
