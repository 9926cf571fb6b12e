// Package entries provides the content record that collections hold and the
// augmentation engine projects.
package entries

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/folio-cms/folio/internal/collections"
	"github.com/folio-cms/folio/internal/fields"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Entry is one content record of a collection
type Entry struct {
	id          string
	collection  *collections.Collection
	slug        string
	blueprint   string
	published   *bool
	date        time.Time
	data        map[string]any
	supplements map[string]any
}

// New creates an entry with a fresh id in collection c. c may be nil for
// detached entries.
func New(c *collections.Collection) *Entry {
	return &Entry{
		id:          uuid.NewString(),
		collection:  c,
		data:        make(map[string]any),
		supplements: make(map[string]any),
	}
}

// ID returns the entry id
func (e *Entry) ID() string {
	return e.id
}

// SetID replaces the entry id
func (e *Entry) SetID(id string) *Entry {
	e.id = id
	return e
}

// Collection returns the owning collection
func (e *Entry) Collection() *collections.Collection {
	return e.collection
}

// SetCollection moves the entry to c
func (e *Entry) SetCollection(c *collections.Collection) *Entry {
	e.collection = c
	return e
}

// Slug returns the slug
func (e *Entry) Slug() string {
	return e.slug
}

// SetSlug sets the slug
func (e *Entry) SetSlug(slug string) *Entry {
	e.slug = slug
	return e
}

// SetBlueprint selects one of the collection's blueprints by handle
func (e *Entry) SetBlueprint(handle string) *Entry {
	e.blueprint = handle
	return e
}

// Blueprint returns the entry's blueprint: the selected one when the
// collection has it, otherwise the collection's default entry blueprint.
func (e *Entry) Blueprint() *fields.Blueprint {
	if e.collection == nil {
		return nil
	}
	if e.blueprint != "" {
		for _, bp := range e.collection.EntryBlueprints() {
			if bp.Handle == e.blueprint {
				return bp
			}
		}
	}
	return e.collection.EntryBlueprint()
}

// Published reports whether the entry is published. Unset entries follow the
// collection's default publish state.
func (e *Entry) Published() bool {
	if e.published != nil {
		return *e.published
	}
	if e.collection == nil {
		return true
	}
	return e.collection.DefaultPublishState()
}

// SetPublished sets the publish state
func (e *Entry) SetPublished(published bool) *Entry {
	e.published = &published
	return e
}

// Date returns the entry date, zero when undated
func (e *Entry) Date() time.Time {
	return e.date
}

// SetDate sets the entry date
func (e *Entry) SetDate(date time.Time) *Entry {
	e.date = date
	return e
}

// Get returns the stored value for a handle
func (e *Entry) Get(handle string) any {
	return e.data[handle]
}

// Set stores a value
func (e *Entry) Set(handle string, value any) *Entry {
	e.data[handle] = value
	return e
}

// Data returns a copy of the stored values
func (e *Entry) Data() map[string]any {
	result := make(map[string]any, len(e.data))
	for k, v := range e.data {
		result[k] = v
	}
	return result
}

// Supplement returns the supplemented value for a handle, nil when none
func (e *Entry) Supplement(handle string) any {
	return e.supplements[handle]
}

// SetSupplement stores a derived value that takes precedence over stored data
func (e *Entry) SetSupplement(handle string, value any) *Entry {
	e.supplements[handle] = value
	return e
}

// URL resolves the collection route for this entry. Entries of collections
// without a route have no URL.
func (e *Entry) URL() (string, bool) {
	if e.collection == nil || e.collection.Route() == "" {
		return "", false
	}
	replacer := strings.NewReplacer(
		"{slug}", e.slug,
		"{id}", e.id,
		"{collection}", e.collection.Handle(),
	)
	return replacer.Replace(e.collection.Route()), true
}

// Order returns the 1-based rank of the entry in its collection
func (e *Entry) Order() (int, bool) {
	if e.collection == nil {
		return 0, false
	}
	return e.collection.EntryRank(e.id)
}

// Accessor exposes the entry's computed properties
func (e *Entry) Accessor(name string) (func() any, bool) {
	switch name {
	case "id":
		return func() any { return e.id }, true
	case "slug":
		return func() any { return e.slug }, true
	case "url":
		return func() any { return optional(e.URL()) }, true
	case "order":
		return func() any { return optional(e.Order()) }, true
	case "published":
		return func() any { return e.Published() }, true
	case "date":
		return func() any {
			if e.date.IsZero() {
				return nil
			}
			return e.date
		}, true
	case "collection":
		return func() any {
			if e.collection == nil {
				return nil
			}
			return e.collection.Handle()
		}, true
	}
	return nil, false
}

func optional[T any](value T, ok bool) any {
	if !ok {
		return nil
	}
	return value
}

// document is the on-disk YAML layout of an entry. Every key that is not one
// of the reserved properties is stored data.
type document struct {
	ID        string         `yaml:"id"`
	Slug      string         `yaml:"slug"`
	Blueprint string         `yaml:"blueprint"`
	Published *bool          `yaml:"published"`
	Date      string         `yaml:"date"`
	Data      map[string]any `yaml:",inline"`
}

// dateLayouts are the accepted entry date formats
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// Load reads an entry from a YAML file into collection c
func Load(path string, c *collections.Collection) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", path, err)
	}
	return Parse(raw, c)
}

// Parse decodes an entry from YAML
func Parse(raw []byte, c *collections.Collection) (*Entry, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse entry: %w", err)
	}

	e := New(c).SetSlug(doc.Slug).SetBlueprint(doc.Blueprint)
	if doc.ID != "" {
		e.SetID(doc.ID)
	}
	if doc.Published != nil {
		e.SetPublished(*doc.Published)
	}
	if doc.Date != "" {
		date, err := parseDate(doc.Date)
		if err != nil {
			return nil, err
		}
		e.SetDate(date)
	}
	for k, v := range doc.Data {
		e.Set(k, v)
	}
	return e, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid entry date: %s", s)
}
