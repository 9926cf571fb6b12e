// Package augment projects records into contextualized values.
//
// A record is checked for a small set of capabilities instead of by method
// name: a computed accessor defined by the engine, a computed accessor on the
// record, a supplement, and finally the stored value. The first strategy that
// applies wins. Values whose handle is declared in the record's blueprint are
// wrapped into *fields.Value; undeclared values are returned as they are.
package augment

import (
	"github.com/folio-cms/folio/internal/fields"
	utilstrings "github.com/folio-cms/folio/internal/util/strings"
)

// Record is the required capability: plain stored-value lookup. A missing
// handle returns nil.
type Record interface {
	Get(handle string) any
}

// BlueprintHolder is implemented by records described by a blueprint
type BlueprintHolder interface {
	Blueprint() *fields.Blueprint
}

// AccessorProvider is implemented by records exposing computed properties.
// Accessors are looked up by the camelCase form of the handle.
type AccessorProvider interface {
	Accessor(name string) (func() any, bool)
}

// Supplementer is implemented by records carrying derived values that take
// precedence over stored data. A nil result means no supplement.
type Supplementer interface {
	Supplement(handle string) any
}

// Computed declares engine-level computed keys and their accessors.
// Accessors are looked up by the camelCase form of the handle.
type Computed interface {
	Keys() []string
	Accessor(name string) (func() any, bool)
}

// Strategy identifies how a handle was resolved
type Strategy int

const (
	// ComputedSelf resolved through an engine-level accessor
	ComputedSelf Strategy = iota
	// ComputedOnRecord resolved through a record accessor
	ComputedOnRecord
	// SupplementOnRecord resolved through a record supplement
	SupplementOnRecord
	// StoredOnRecord resolved through the stored value
	StoredOnRecord
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case ComputedSelf:
		return "computed_self"
	case ComputedOnRecord:
		return "computed_on_record"
	case SupplementOnRecord:
		return "supplement_on_record"
	case StoredOnRecord:
		return "stored_on_record"
	default:
		return "unknown"
	}
}

// ComputedFuncs is an ordered set of engine-level accessors
type ComputedFuncs struct {
	keys []string
	fns  map[string]func() any
}

// NewComputedFuncs creates an empty accessor set
func NewComputedFuncs() *ComputedFuncs {
	return &ComputedFuncs{fns: make(map[string]func() any)}
}

// Add registers an accessor for a key. Re-adding a key replaces the accessor.
func (c *ComputedFuncs) Add(key string, fn func() any) *ComputedFuncs {
	name := utilstrings.ToCamelCase(key)
	if _, exists := c.fns[name]; !exists {
		c.keys = append(c.keys, key)
	}
	c.fns[name] = fn
	return c
}

// Keys returns the computed keys in registration order
func (c *ComputedFuncs) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Accessor returns the accessor registered under an accessor name
func (c *ComputedFuncs) Accessor(name string) (func() any, bool) {
	fn, ok := c.fns[name]
	return fn, ok
}

// MapRecord adapts a plain map into a Record
type MapRecord map[string]any

// Get returns the stored value for a handle
func (m MapRecord) Get(handle string) any {
	return m[handle]
}
