// Package collections holds the configuration aggregate for a collection of
// entries: identity, routing, sites, cascade data, blueprints, sort and
// publish policy, and the sparse ordering of its entries.
//
// A Collection is a mutable aggregate with fluent setters and is not safe for
// concurrent mutation; callers serialize edits to the same handle.
package collections

import (
	"github.com/folio-cms/folio/internal/fields"
	"github.com/folio-cms/folio/internal/hooks"
	"github.com/folio-cms/folio/internal/ordering"
	"github.com/folio-cms/folio/internal/sites"
	utilstrings "github.com/folio-cms/folio/internal/util/strings"
	"go.uber.org/zap"
)

const (
	// DefaultTemplate is the template used when none is set
	DefaultTemplate = "default"
	// DefaultLayout is the layout used when none is set
	DefaultLayout = "layout"
)

// SiteRegistry lists the sites of the deployment
type SiteRegistry interface {
	All() []string
	Default() string
	IsMultiSite() bool
}

// BlueprintFinder resolves blueprint handles
type BlueprintFinder interface {
	Find(handle string) (*fields.Blueprint, bool)
}

// Env carries the collaborators and process-wide policy a collection needs.
// Zero fields fall back to a single-site registry, an empty blueprint
// registry and a no-op logger.
type Env struct {
	Sites      SiteRegistry
	Blueprints BlueprintFinder
	Store      Store
	Cache      Invalidator
	Hooks      *hooks.Executor[*Collection]
	Logger     *zap.Logger

	// RevisionsEnabled is the process-wide revisions default
	RevisionsEnabled bool
}

func (e Env) withDefaults() Env {
	if e.Sites == nil {
		e.Sites = sites.Single()
	}
	if e.Blueprints == nil {
		e.Blueprints = fields.NewRegistry()
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e
}

// Collection is the configuration of one collection
type Collection struct {
	env Env

	handle      string
	savedHandle string
	route       string
	template    string
	layout      string
	title       string
	sites       []string
	cascade     map[string]any
	blueprints  []string

	dated     bool
	orderable bool

	futureDateBehavior  DateBehavior
	pastDateBehavior    DateBehavior
	defaultPublishState *bool
	revisions           bool

	positions *ordering.Store[string]
}

// New creates an empty collection bound to env
func New(env Env) *Collection {
	return &Collection{
		env:     env.withDefaults(),
		cascade: make(map[string]any),
	}
}

// Handle returns the collection handle, its identity
func (c *Collection) Handle() string {
	return c.handle
}

// SetHandle sets the handle. Renaming a saved collection moves it on the next save.
func (c *Collection) SetHandle(handle string) *Collection {
	c.handle = handle
	return c
}

// Route returns the route template, empty when the collection has no URLs
func (c *Collection) Route() string {
	return c.route
}

// SetRoute sets the route template, e.g. "/blog/{slug}"
func (c *Collection) SetRoute(route string) *Collection {
	c.route = route
	return c
}

// Template returns the template identifier
func (c *Collection) Template() string {
	if c.template == "" {
		return DefaultTemplate
	}
	return c.template
}

// SetTemplate sets the template identifier
func (c *Collection) SetTemplate(template string) *Collection {
	c.template = template
	return c
}

// Layout returns the layout identifier
func (c *Collection) Layout() string {
	if c.layout == "" {
		return DefaultLayout
	}
	return c.layout
}

// SetLayout sets the layout identifier
func (c *Collection) SetLayout(layout string) *Collection {
	c.layout = layout
	return c
}

// Title returns the title, derived from the handle when not set
func (c *Collection) Title() string {
	if c.title == "" {
		return utilstrings.Headline(c.handle)
	}
	return c.title
}

// SetTitle sets the title
func (c *Collection) SetTitle(title string) *Collection {
	c.title = title
	return c
}

// Sites returns the sites the collection is available in. In single-site
// deployments this is always the default site.
func (c *Collection) Sites() []string {
	if !c.env.Sites.IsMultiSite() {
		return []string{c.env.Sites.Default()}
	}
	result := make([]string, len(c.sites))
	copy(result, c.sites)
	return result
}

// SetSites assigns sites. It has no effect in single-site deployments.
func (c *Collection) SetSites(handles []string) *Collection {
	if !c.env.Sites.IsMultiSite() {
		return c
	}
	c.sites = make([]string, len(handles))
	copy(c.sites, handles)
	return c
}

// Cascade returns the cascade data. The map is live: writes to it change the
// collection.
func (c *Collection) Cascade() map[string]any {
	return c.cascade
}

// CascadeValue returns one cascade value, or the first fallback when absent
func (c *Collection) CascadeValue(key string, fallback ...any) any {
	if value, ok := c.cascade[key]; ok {
		return value
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return nil
}

// SetCascade replaces all cascade data. nil clears it.
func (c *Collection) SetCascade(data map[string]any) *Collection {
	c.cascade = make(map[string]any, len(data))
	for k, v := range data {
		c.cascade[k] = v
	}
	return c
}

// PutCascade sets one cascade value
func (c *Collection) PutCascade(key string, value any) *Collection {
	c.cascade[key] = value
	return c
}

// EntryBlueprintHandles returns the assigned blueprint handles in order
func (c *Collection) EntryBlueprintHandles() []string {
	result := make([]string, len(c.blueprints))
	copy(result, c.blueprints)
	return result
}

// SetEntryBlueprints assigns blueprints by handle
func (c *Collection) SetEntryBlueprints(handles []string) *Collection {
	c.blueprints = make([]string, len(handles))
	copy(c.blueprints, handles)
	return c
}

// EntryBlueprints resolves the assigned blueprints. Unknown handles are skipped.
func (c *Collection) EntryBlueprints() []*fields.Blueprint {
	result := make([]*fields.Blueprint, 0, len(c.blueprints))
	for _, handle := range c.blueprints {
		if bp, ok := c.env.Blueprints.Find(handle); ok {
			result = append(result, bp)
		}
	}
	return result
}

// EntryBlueprint returns the first assigned blueprint, or the default
// blueprint when none are assigned
func (c *Collection) EntryBlueprint() *fields.Blueprint {
	if assigned := c.EntryBlueprints(); len(assigned) > 0 {
		return assigned[0]
	}
	if bp, ok := c.env.Blueprints.Find(fields.DefaultBlueprint); ok {
		return bp
	}
	return fields.NewBlueprint(fields.DefaultBlueprint, "Default")
}

// Dated reports whether entries carry a date
func (c *Collection) Dated() bool {
	return c.dated
}

// SetDated sets whether entries carry a date
func (c *Collection) SetDated(dated bool) *Collection {
	c.dated = dated
	return c
}

// Orderable reports whether entries are manually ordered
func (c *Collection) Orderable() bool {
	return c.orderable
}

// SetOrderable sets whether entries are manually ordered
func (c *Collection) SetOrderable(orderable bool) *Collection {
	c.orderable = orderable
	return c
}
