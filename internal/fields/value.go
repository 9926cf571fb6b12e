package fields

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Value is a raw value decorated with the field that declares it and the
// record that owns it. It is immutable once created.
type Value struct {
	raw       any
	handle    string
	fieldtype Fieldtype
	parent    any
}

// NewValue creates a contextualized value
func NewValue(raw any, handle string, fieldtype Fieldtype, parent any) *Value {
	return &Value{
		raw:       raw,
		handle:    handle,
		fieldtype: fieldtype,
		parent:    parent,
	}
}

// Raw returns the value as it was stored
func (v *Value) Raw() any {
	return v.raw
}

// Handle returns the field handle
func (v *Value) Handle() string {
	return v.handle
}

// Fieldtype returns the fieldtype of the declaring field
func (v *Value) Fieldtype() Fieldtype {
	return v.fieldtype
}

// Parent returns the record the value was read from
func (v *Value) Parent() any {
	return v.parent
}

// Value returns the raw value augmented by its fieldtype
func (v *Value) Value() any {
	if v.fieldtype == nil {
		return v.raw
	}
	return v.fieldtype.Augment(v.raw)
}

// Equal compares the raw values. other may be another *Value or a plain value.
func (v *Value) Equal(other any) bool {
	if o, ok := other.(*Value); ok {
		other = o.raw
	}
	return reflect.DeepEqual(v.raw, other)
}

// String renders the augmented value
func (v *Value) String() string {
	augmented := v.Value()
	if augmented == nil {
		return ""
	}
	return fmt.Sprint(augmented)
}

// MarshalJSON encodes the augmented value
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}
