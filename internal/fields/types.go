// Package fields describes the schema side of content: field types, fields,
// blueprints and the contextualized values produced when a stored value is
// paired with the field that declares it.
package fields

import (
	"fmt"
)

// Type represents the declared type of a field
type Type int

const (
	// Text types
	TypeText Type = iota
	TypeTextarea
	TypeMarkdown

	// Scalar types
	TypeToggle
	TypeInteger
	TypeDate

	// Collection types
	TypeList
	TypeEntries
)

// String returns the string representation of the field type
func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeTextarea:
		return "textarea"
	case TypeMarkdown:
		return "markdown"
	case TypeToggle:
		return "toggle"
	case TypeInteger:
		return "integer"
	case TypeDate:
		return "date"
	case TypeList:
		return "list"
	case TypeEntries:
		return "entries"
	default:
		return "unknown"
	}
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch s {
	case "text":
		return TypeText, nil
	case "textarea":
		return TypeTextarea, nil
	case "markdown":
		return TypeMarkdown, nil
	case "toggle":
		return TypeToggle, nil
	case "integer":
		return TypeInteger, nil
	case "date":
		return TypeDate, nil
	case "list":
		return TypeList, nil
	case "entries":
		return TypeEntries, nil
	default:
		return 0, fmt.Errorf("unknown field type: %s", s)
	}
}

// Field is a single entry of a blueprint: a handle and the type declared for it
type Field struct {
	Handle string
	Type   Type
	Config map[string]any
}

// NewField creates a field with an empty config
func NewField(handle string, typ Type) *Field {
	return &Field{
		Handle: handle,
		Type:   typ,
		Config: make(map[string]any),
	}
}

// Fieldtype returns the fieldtype that augments values of this field
func (f *Field) Fieldtype() Fieldtype {
	return FieldtypeFor(f.Type)
}

// Display returns the configured display name, falling back to the handle
func (f *Field) Display() string {
	if display, ok := f.Config["display"].(string); ok && display != "" {
		return display
	}
	return f.Handle
}

// FieldSet is an ordered handle -> field mapping. The zero value and a nil
// *FieldSet are both empty.
type FieldSet struct {
	keys   []string
	fields map[string]*Field
}

// NewFieldSet builds a field set in the given order. A repeated handle replaces
// the earlier field but keeps its position.
func NewFieldSet(fields ...*Field) *FieldSet {
	fs := &FieldSet{fields: make(map[string]*Field, len(fields))}
	for _, f := range fields {
		fs.add(f)
	}
	return fs
}

func (fs *FieldSet) add(f *Field) {
	if _, exists := fs.fields[f.Handle]; !exists {
		fs.keys = append(fs.keys, f.Handle)
	}
	fs.fields[f.Handle] = f
}

// Keys returns the field handles in declaration order
func (fs *FieldSet) Keys() []string {
	if fs == nil {
		return nil
	}
	keys := make([]string, len(fs.keys))
	copy(keys, fs.keys)
	return keys
}

// Has reports whether a field with the handle is declared
func (fs *FieldSet) Has(handle string) bool {
	if fs == nil {
		return false
	}
	_, ok := fs.fields[handle]
	return ok
}

// Get returns the field for a handle
func (fs *FieldSet) Get(handle string) (*Field, bool) {
	if fs == nil {
		return nil, false
	}
	f, ok := fs.fields[handle]
	return f, ok
}

// Len returns the number of declared fields
func (fs *FieldSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.keys)
}
