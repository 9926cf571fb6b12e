package augment

import (
	"github.com/folio-cms/folio/internal/fields"
	utilstrings "github.com/folio-cms/folio/internal/util/strings"
)

// reservedAccessors are the engine's own selection operations. Computed
// accessors with these names are skipped so they cannot recurse into the
// projection. Accessors the record itself provides are still used.
var reservedAccessors = map[string]bool{
	"select": true,
	"except": true,
	"all":    true,
}

// Augmented projects one record
type Augmented struct {
	data     Record
	computed Computed
}

// Option configures an Augmented
type Option func(*Augmented)

// WithComputed adds engine-level computed keys
func WithComputed(computed Computed) Option {
	return func(a *Augmented) {
		a.computed = computed
	}
}

// New creates an engine for a record
func New(data Record, opts ...Option) *Augmented {
	a := &Augmented{data: data}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Data returns the underlying record
func (a *Augmented) Data() Record {
	return a.data
}

// Keys returns every augmentable key: blueprint fields in blueprint order,
// then computed keys, without duplicates.
func (a *Augmented) Keys() []string {
	schemaKeys := blueprintFields(a.data).Keys()

	var computedKeys []string
	if a.computed != nil {
		computedKeys = a.computed.Keys()
	}

	seen := make(map[string]bool, len(schemaKeys)+len(computedKeys))
	keys := make([]string, 0, len(schemaKeys)+len(computedKeys))
	for _, group := range [][]string{schemaKeys, computedKeys} {
		for _, key := range group {
			if seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// All projects every augmentable key
func (a *Augmented) All() *Result {
	return a.Select()
}

// Select projects the given keys, or every augmentable key when none are given
func (a *Augmented) Select(keys ...string) *Result {
	if len(keys) == 0 {
		keys = a.Keys()
	}
	return a.project(keys)
}

// Except projects every augmentable key except the given ones
func (a *Augmented) Except(keys ...string) *Result {
	excluded := make(map[string]bool, len(keys))
	for _, key := range keys {
		excluded[key] = true
	}

	var remaining []string
	for _, key := range a.Keys() {
		if !excluded[key] {
			remaining = append(remaining, key)
		}
	}
	return a.project(remaining)
}

func (a *Augmented) project(keys []string) *Result {
	fs := blueprintFields(a.data)
	result := newResult(len(keys))
	for _, key := range keys {
		value, _ := a.resolve(key, fs)
		result.set(key, value)
	}
	return result
}

// Get returns the projected value for a handle
func (a *Augmented) Get(handle string) any {
	value, _ := a.Resolve(handle)
	return value
}

// Resolve returns the projected value for a handle and the strategy that
// produced it
func (a *Augmented) Resolve(handle string) (any, Strategy) {
	return a.resolve(handle, blueprintFields(a.data))
}

func (a *Augmented) resolve(handle string, fs *fields.FieldSet) (any, Strategy) {
	name := utilstrings.ToCamelCase(handle)
	reserved := reservedAccessors[name]

	if a.computed != nil && !reserved {
		if fn, ok := a.computed.Accessor(name); ok {
			return fn(), ComputedSelf
		}
	}

	if provider, ok := a.data.(AccessorProvider); ok {
		if fn, ok := provider.Accessor(name); ok {
			return wrap(fn(), handle, a.data, fs), ComputedOnRecord
		}
	}

	value := a.data.Get(handle)
	strategy := StoredOnRecord
	if supplementer, ok := a.data.(Supplementer); ok {
		if supplement := supplementer.Supplement(handle); supplement != nil {
			value = supplement
			strategy = SupplementOnRecord
		}
	}

	return wrap(value, handle, a.data, fs), strategy
}

// Wrap decorates a value with the field declared for handle in the record's
// blueprint. Undeclared handles return the value unchanged.
func Wrap(value any, handle string, data Record) any {
	return wrap(value, handle, data, blueprintFields(data))
}

func wrap(value any, handle string, data Record, fs *fields.FieldSet) any {
	field, ok := fs.Get(handle)
	if !ok {
		return value
	}
	return fields.NewValue(value, handle, field.Fieldtype(), data)
}

// blueprintFields is the schema lookup: records without a blueprint have no
// declared fields
func blueprintFields(data Record) *fields.FieldSet {
	holder, ok := data.(BlueprintHolder)
	if !ok {
		return fields.NewFieldSet()
	}
	return holder.Blueprint().Fields()
}
