package fields

// DefaultBlueprint is the handle used when a collection assigns no blueprints
const DefaultBlueprint = "default"

// Blueprint is a named, ordered list of fields describing a record
type Blueprint struct {
	Handle string
	Title  string
	fields []*Field
}

// NewBlueprint creates a blueprint with the given fields in order
func NewBlueprint(handle, title string, fields ...*Field) *Blueprint {
	return &Blueprint{
		Handle: handle,
		Title:  title,
		fields: fields,
	}
}

// Add appends a field and returns the blueprint
func (b *Blueprint) Add(field *Field) *Blueprint {
	b.fields = append(b.fields, field)
	return b
}

// Fields returns the declared fields. A nil blueprint has no fields.
func (b *Blueprint) Fields() *FieldSet {
	if b == nil {
		return NewFieldSet()
	}
	return NewFieldSet(b.fields...)
}

// Field returns the field with the handle, or nil
func (b *Blueprint) Field(handle string) *Field {
	f, _ := b.Fields().Get(handle)
	return f
}
