package collections

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/folio-cms/folio/internal/hooks"
	"github.com/folio-cms/folio/internal/ordering"
	"go.uber.org/zap"
)

const (
	// HandlesCacheKey caches the list of collection handles
	HandlesCacheKey = "collection-handles"
	// cachePrefix is followed by the handle for per-collection cache entries.
	// Its separator differs from the handle list key so no handle collides.
	cachePrefix = "collection:"
)

var (
	// ErrNotFound is returned when no collection has the handle
	ErrNotFound = errors.New("collection not found")

	// ErrMissingHandle is returned when saving a collection without a handle
	ErrMissingHandle = errors.New("collection has no handle")

	// ErrNoStore is returned when persisting a collection without a store
	ErrNoStore = errors.New("collection store not configured")
)

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CacheKey returns the cache prefix of one collection
func CacheKey(handle string) string {
	return cachePrefix + handle
}

// DecodeSnapshot decodes a JSON encoded snapshot. Cascade numbers come back
// as int when integral and float64 otherwise, the types YAML decoding gives.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&snapshot); err != nil {
		return snapshot, err
	}
	for key, value := range snapshot.Cascade {
		snapshot.Cascade[key] = normalizeNumbers(value)
	}
	return snapshot, nil
}

func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			if i == int64(int(i)) {
				return int(i)
			}
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for key, item := range v {
			v[key] = normalizeNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
		return v
	}
	return value
}

// Store persists collection snapshots. Get returns an error wrapping
// ErrNotFound for unknown handles.
type Store interface {
	Put(ctx context.Context, snapshot Snapshot) error
	Get(ctx context.Context, handle string) (Snapshot, error)
	Delete(ctx context.Context, handle string) error
	Handles(ctx context.Context) ([]string, error)
}

// Invalidator drops cached entries after structural changes
type Invalidator interface {
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Snapshot is the persisted form of a collection
type Snapshot struct {
	Handle              string         `yaml:"handle" json:"handle"`
	Title               string         `yaml:"title,omitempty" json:"title,omitempty"`
	Route               string         `yaml:"route,omitempty" json:"route,omitempty"`
	Template            string         `yaml:"template,omitempty" json:"template,omitempty"`
	Layout              string         `yaml:"layout,omitempty" json:"layout,omitempty"`
	Sites               []string       `yaml:"sites,omitempty" json:"sites,omitempty"`
	Cascade             map[string]any `yaml:"inject,omitempty" json:"inject,omitempty"`
	Blueprints          []string       `yaml:"blueprints,omitempty" json:"blueprints,omitempty"`
	Dated               bool           `yaml:"date" json:"date"`
	Orderable           bool           `yaml:"orderable" json:"orderable"`
	FutureDateBehavior  string         `yaml:"future_date_behavior,omitempty" json:"future_date_behavior,omitempty"`
	PastDateBehavior    string         `yaml:"past_date_behavior,omitempty" json:"past_date_behavior,omitempty"`
	DefaultPublishState *bool          `yaml:"default_publish_state,omitempty" json:"default_publish_state,omitempty"`
	Revisions           bool           `yaml:"revisions,omitempty" json:"revisions,omitempty"`
	Positions           map[int]string `yaml:"positions,omitempty" json:"positions,omitempty"`
}

// Snapshot captures the persisted state of the collection
func (c *Collection) Snapshot() Snapshot {
	s := Snapshot{
		Handle:              c.handle,
		Title:               c.title,
		Route:               c.route,
		Template:            c.template,
		Layout:              c.layout,
		Sites:               append([]string(nil), c.sites...),
		Blueprints:          c.EntryBlueprintHandles(),
		Dated:               c.dated,
		Orderable:           c.orderable,
		FutureDateBehavior:  string(c.futureDateBehavior),
		PastDateBehavior:    string(c.pastDateBehavior),
		DefaultPublishState: c.defaultPublishState,
		Revisions:           c.revisions,
	}
	if len(c.cascade) > 0 {
		s.Cascade = make(map[string]any, len(c.cascade))
		for k, v := range c.cascade {
			s.Cascade[k] = v
		}
	}
	if c.positions != nil && c.positions.Len() > 0 {
		s.Positions = c.positions.PositionMap()
	}
	return s
}

// FromSnapshot rebuilds a saved collection
func FromSnapshot(s Snapshot, env Env) *Collection {
	c := New(env).
		SetHandle(s.Handle).
		SetTitle(s.Title).
		SetRoute(s.Route).
		SetTemplate(s.Template).
		SetLayout(s.Layout).
		SetSites(s.Sites).
		SetCascade(s.Cascade).
		SetEntryBlueprints(s.Blueprints).
		SetDated(s.Dated).
		SetOrderable(s.Orderable).
		SetFutureDateBehavior(DateBehavior(s.FutureDateBehavior)).
		SetPastDateBehavior(DateBehavior(s.PastDateBehavior)).
		SetRevisionsEnabled(s.Revisions)

	if s.DefaultPublishState != nil {
		c.SetDefaultPublishState(*s.DefaultPublishState)
	}
	if len(s.Positions) > 0 {
		c.positions = ordering.FromPositions(s.Positions)
	}
	c.savedHandle = s.Handle
	return c
}

// Save persists the collection and invalidates its cache entries. A renamed
// collection is removed under its previous handle.
func (c *Collection) Save(ctx context.Context) error {
	if c.handle == "" {
		return ErrMissingHandle
	}
	if c.env.Store == nil {
		return ErrNoStore
	}

	if err := c.env.Hooks.Execute(ctx, hooks.BeforeSave, c); err != nil {
		return err
	}

	if err := c.env.Store.Put(ctx, c.Snapshot()); err != nil {
		return fmt.Errorf("failed to save collection %s: %w", c.handle, err)
	}

	if previous := c.savedHandle; previous != "" && previous != c.handle {
		if err := c.env.Store.Delete(ctx, previous); err != nil && !IsNotFound(err) {
			return fmt.Errorf("failed to remove renamed collection %s: %w", previous, err)
		}
		if err := c.invalidate(ctx, previous); err != nil {
			return err
		}
		c.env.Logger.Info("collection renamed",
			zap.String("from", previous),
			zap.String("to", c.handle))
	}

	if err := c.invalidate(ctx, c.handle); err != nil {
		return err
	}
	c.savedHandle = c.handle

	c.env.Logger.Debug("collection saved", zap.String("handle", c.handle))

	return c.env.Hooks.Execute(ctx, hooks.AfterSave, c)
}

// Delete removes the collection and invalidates its cache entries
func (c *Collection) Delete(ctx context.Context) error {
	handle := c.savedHandle
	if handle == "" {
		handle = c.handle
	}
	if handle == "" {
		return ErrMissingHandle
	}
	if c.env.Store == nil {
		return ErrNoStore
	}

	if err := c.env.Hooks.Execute(ctx, hooks.BeforeDelete, c); err != nil {
		return err
	}

	if err := c.env.Store.Delete(ctx, handle); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", handle, err)
	}
	if err := c.invalidate(ctx, handle); err != nil {
		return err
	}
	c.savedHandle = ""

	c.env.Logger.Debug("collection deleted", zap.String("handle", handle))

	return c.env.Hooks.Execute(ctx, hooks.AfterDelete, c)
}

func (c *Collection) invalidate(ctx context.Context, handle string) error {
	if c.env.Cache == nil {
		return nil
	}
	if err := c.env.Cache.Delete(ctx, HandlesCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", HandlesCacheKey, err)
	}
	if err := c.env.Cache.DeletePrefix(ctx, CacheKey(handle)); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", CacheKey(handle), err)
	}
	return nil
}
