package collections

import (
	"context"
	"fmt"
	"sort"
)

// Repository loads collections from a Store and binds them to an Env
type Repository struct {
	env Env
}

// NewRepository creates a repository for env. env.Store must be set.
func NewRepository(env Env) *Repository {
	return &Repository{env: env.withDefaults()}
}

// Make returns a new unsaved collection with the given handle
func (r *Repository) Make(handle string) *Collection {
	return New(r.env).SetHandle(handle)
}

// Find loads a collection by handle. Unknown handles return ErrNotFound.
func (r *Repository) Find(ctx context.Context, handle string) (*Collection, error) {
	if r.env.Store == nil {
		return nil, ErrNoStore
	}
	snapshot, err := r.env.Store.Get(ctx, handle)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(snapshot, r.env), nil
}

// Handles returns all collection handles, sorted
func (r *Repository) Handles(ctx context.Context) ([]string, error) {
	if r.env.Store == nil {
		return nil, ErrNoStore
	}
	handles, err := r.env.Store.Handles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	sort.Strings(handles)
	return handles, nil
}

// All loads every collection, sorted by handle
func (r *Repository) All(ctx context.Context) ([]*Collection, error) {
	handles, err := r.Handles(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Collection, 0, len(handles))
	for _, handle := range handles {
		c, err := r.Find(ctx, handle)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Save persists c. It is shorthand for c.Save.
func (r *Repository) Save(ctx context.Context, c *Collection) error {
	return c.Save(ctx)
}
