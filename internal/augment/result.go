package augment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is an ordered handle -> value projection
type Result struct {
	keys   []string
	values map[string]any
}

func newResult(size int) *Result {
	return &Result{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

func (r *Result) set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the projected keys in projection order
func (r *Result) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Get returns the value for a key. A present key may hold a nil value.
func (r *Result) Get(key string) (any, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Len returns the number of projected keys
func (r *Result) Len() int {
	return len(r.keys)
}

// Map returns the projection as an unordered map
func (r *Result) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the projection as an object with keys in projection order
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
