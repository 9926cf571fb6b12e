package collections

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/folio-cms/folio/internal/fields"
	"github.com/folio-cms/folio/internal/hooks"
	"github.com/folio-cms/folio/internal/sites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	snapshots map[string]Snapshot
	puts      int
	failPut   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snapshots: make(map[string]Snapshot)}
}

func (s *memoryStore) Put(ctx context.Context, snapshot Snapshot) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.puts++
	s.snapshots[snapshot.Handle] = snapshot
	return nil
}

func (s *memoryStore) Get(ctx context.Context, handle string) (Snapshot, error) {
	snapshot, ok := s.snapshots[handle]
	if !ok {
		return Snapshot{}, fmt.Errorf("%s: %w", handle, ErrNotFound)
	}
	return snapshot, nil
}

func (s *memoryStore) Delete(ctx context.Context, handle string) error {
	if _, ok := s.snapshots[handle]; !ok {
		return ErrNotFound
	}
	delete(s.snapshots, handle)
	return nil
}

func (s *memoryStore) Handles(ctx context.Context) ([]string, error) {
	handles := make([]string, 0, len(s.snapshots))
	for handle := range s.snapshots {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles, nil
}

type recordingCache struct {
	calls []string
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.calls = append(c.calls, "delete:"+key)
	return nil
}

func (c *recordingCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.calls = append(c.calls, "prefix:"+prefix)
	return nil
}

func multiSite(t *testing.T) *sites.Registry {
	t.Helper()
	r, err := sites.New([]sites.Site{
		{Handle: "en", URL: "http://domain.com/"},
		{Handle: "fr", URL: "http://domain.com/fr/"},
		{Handle: "de", URL: "http://domain.com/de/"},
	})
	require.NoError(t, err)
	return r
}

func TestCollection_Identity(t *testing.T) {
	c := New(Env{})

	assert.Empty(t, c.Handle())
	assert.Same(t, c, c.SetHandle("blog"))
	assert.Equal(t, "blog", c.Handle())

	assert.Empty(t, c.Route())
	c.SetRoute("/blog/{slug}")
	assert.Equal(t, "/blog/{slug}", c.Route())

	assert.Equal(t, DefaultTemplate, c.Template())
	c.SetTemplate("post")
	assert.Equal(t, "post", c.Template())

	assert.Equal(t, DefaultLayout, c.Layout())
	c.SetLayout("blog-layout")
	assert.Equal(t, "blog-layout", c.Layout())
}

func TestCollection_Title(t *testing.T) {
	c := New(Env{}).SetHandle("blog")
	assert.Equal(t, "Blog", c.Title())

	c.SetHandle("blog_posts")
	assert.Equal(t, "Blog Posts", c.Title())

	c.SetTitle("The Blog")
	assert.Equal(t, "The Blog", c.Title())
}

func TestCollection_Sites(t *testing.T) {
	t.Run("multi site", func(t *testing.T) {
		c := New(Env{Sites: multiSite(t)})
		assert.Empty(t, c.Sites())

		c.SetSites([]string{"en", "fr"})
		assert.Equal(t, []string{"en", "fr"}, c.Sites())

		// returned slice is a copy
		c.Sites()[0] = "de"
		assert.Equal(t, []string{"en", "fr"}, c.Sites())
	})

	t.Run("single site ignores assignment", func(t *testing.T) {
		c := New(Env{})
		assert.Equal(t, []string{"en"}, c.Sites())

		c.SetSites([]string{"en", "fr"})
		assert.Equal(t, []string{"en"}, c.Sites())
	})
}

func TestCollection_Cascade(t *testing.T) {
	c := New(Env{})
	assert.Empty(t, c.Cascade())

	c.SetCascade(map[string]any{"foo": "bar", "baz": "qux"})
	assert.Equal(t, map[string]any{"foo": "bar", "baz": "qux"}, c.Cascade())
	assert.Equal(t, "bar", c.CascadeValue("foo"))
	assert.Nil(t, c.CascadeValue("unknown"))
	assert.Equal(t, "fallback", c.CascadeValue("unknown", "fallback"))

	c.PutCascade("foo", "changed")
	assert.Equal(t, "changed", c.CascadeValue("foo"))

	c.Cascade()["live"] = true
	assert.Equal(t, true, c.CascadeValue("live"))

	c.SetCascade(nil)
	assert.NotNil(t, c.Cascade())
	assert.Empty(t, c.Cascade())
}

func TestCollection_EntryBlueprints(t *testing.T) {
	registry := fields.NewRegistry()
	require.NoError(t, registry.Register(fields.NewBlueprint("article", "Article")))
	require.NoError(t, registry.Register(fields.NewBlueprint("gallery", "Gallery")))

	c := New(Env{Blueprints: registry})

	t.Run("default when none assigned", func(t *testing.T) {
		assert.Empty(t, c.EntryBlueprints())
		bp := c.EntryBlueprint()
		require.NotNil(t, bp)
		assert.Equal(t, fields.DefaultBlueprint, bp.Handle)
	})

	t.Run("registered default is used", func(t *testing.T) {
		r := fields.NewRegistry()
		def := fields.NewBlueprint(fields.DefaultBlueprint, "Registered")
		require.NoError(t, r.Register(def))
		assert.Same(t, def, New(Env{Blueprints: r}).EntryBlueprint())
	})

	t.Run("assigned", func(t *testing.T) {
		c.SetEntryBlueprints([]string{"gallery", "missing", "article"})
		assert.Equal(t, []string{"gallery", "missing", "article"}, c.EntryBlueprintHandles())

		resolved := c.EntryBlueprints()
		require.Len(t, resolved, 2)
		assert.Equal(t, "gallery", resolved[0].Handle)
		assert.Equal(t, "article", resolved[1].Handle)
		assert.Equal(t, "gallery", c.EntryBlueprint().Handle)
	})
}

func TestCollection_SortPolicy(t *testing.T) {
	tests := []struct {
		dated     bool
		orderable bool
		field     string
		direction string
	}{
		{false, false, "title", "asc"},
		{true, false, "date", "desc"},
		{false, true, "order", "asc"},
		{true, true, "order", "asc"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("dated=%v orderable=%v", tt.dated, tt.orderable), func(t *testing.T) {
			c := New(Env{}).SetDated(tt.dated).SetOrderable(tt.orderable)
			assert.Equal(t, tt.dated, c.Dated())
			assert.Equal(t, tt.orderable, c.Orderable())
			assert.Equal(t, tt.field, c.SortField())
			assert.Equal(t, tt.direction, c.SortDirection())
		})
	}
}

func TestCollection_DateBehavior(t *testing.T) {
	c := New(Env{})
	assert.Equal(t, DatePublic, c.FutureDateBehavior())
	assert.Equal(t, DatePublic, c.PastDateBehavior())

	c.SetFutureDateBehavior(DatePrivate).SetPastDateBehavior(DateUnlisted)
	assert.Equal(t, DatePrivate, c.FutureDateBehavior())
	assert.Equal(t, DateUnlisted, c.PastDateBehavior())

	c.SetFutureDateBehavior("").SetPastDateBehavior("")
	assert.Equal(t, DatePublic, c.FutureDateBehavior())
	assert.Equal(t, DatePublic, c.PastDateBehavior())

	c.SetFutureDateBehavior(DatePrivate).SetPastDateBehavior("bogus")
	assert.Equal(t, DatePrivate, c.FutureDateBehavior())
	assert.Equal(t, DatePublic, c.PastDateBehavior())
}

func TestFromSnapshot_UnknownDateBehavior(t *testing.T) {
	c := FromSnapshot(Snapshot{
		Handle:             "blog",
		FutureDateBehavior: "bogus",
		PastDateBehavior:   "unlisted",
	}, Env{})

	assert.Equal(t, DatePublic, c.FutureDateBehavior())
	assert.Equal(t, DateUnlisted, c.PastDateBehavior())
	assert.Empty(t, c.Snapshot().FutureDateBehavior)
}

func TestParseDateBehavior(t *testing.T) {
	for input, want := range map[string]DateBehavior{
		"":         DatePublic,
		"public":   DatePublic,
		"private":  DatePrivate,
		"unlisted": DateUnlisted,
	} {
		got, err := ParseDateBehavior(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDateBehavior("hidden")
	assert.Error(t, err)
}

func TestCollection_DefaultPublishState(t *testing.T) {
	t.Run("defaults to true", func(t *testing.T) {
		c := New(Env{})
		assert.True(t, c.DefaultPublishState())

		c.SetDefaultPublishState(false)
		assert.False(t, c.DefaultPublishState())

		c.SetDefaultPublishState(true)
		assert.True(t, c.DefaultPublishState())
	})

	t.Run("own flag alone does not pin", func(t *testing.T) {
		c := New(Env{RevisionsEnabled: false}).SetRevisionsEnabled(true)
		assert.False(t, c.RevisionsEnabled())
		assert.True(t, c.DefaultPublishState())
	})

	t.Run("pinned to false while revisions are enabled", func(t *testing.T) {
		c := New(Env{RevisionsEnabled: true}).SetRevisionsEnabled(true)
		assert.True(t, c.RevisionsEnabled())
		assert.False(t, c.DefaultPublishState())

		c.SetDefaultPublishState(true)
		assert.False(t, c.DefaultPublishState())

		c.SetDefaultPublishState(false)
		assert.False(t, c.DefaultPublishState())

		c.SetRevisionsEnabled(false)
		assert.True(t, c.DefaultPublishState(), "the last explicit value applies again once unpinned")
	})
}

func TestCollection_EntryPositions(t *testing.T) {
	c := New(Env{})

	c.SetEntryPosition("one", 3)
	assert.Equal(t, []string{"one"}, c.EntryOrder())
	rank, ok := c.EntryRank("one")
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	c.SetEntryPosition("two", 7)
	assert.Equal(t, []string{"one", "two"}, c.EntryOrder())

	c.SetEntryPosition("three", 5)
	assert.Equal(t, []string{"one", "three", "two"}, c.EntryOrder())

	c.SetEntryPosition("four", 1)
	assert.Equal(t, []string{"four", "one", "three", "two"}, c.EntryOrder())

	for id, want := range map[string]int{"four": 1, "one": 2, "three": 3, "two": 4} {
		rank, ok := c.EntryRank(id)
		require.True(t, ok, id)
		assert.Equal(t, want, rank, id)
	}

	position, ok := c.EntryPosition("three")
	require.True(t, ok)
	assert.Equal(t, 5, position)

	_, ok = c.EntryPosition("unknown")
	assert.False(t, ok)
	_, ok = c.EntryRank("unknown")
	assert.False(t, ok)

	c.SetEntryPositions(map[int]string{10: "b", 2: "a"})
	assert.Equal(t, []string{"a", "b"}, c.EntryOrder())
	require.Len(t, c.EntryPositions(), 2)
	assert.Equal(t, 2, c.EntryPositions()[0].Position)
}

func TestCollection_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and invalidates", func(t *testing.T) {
		store := newMemoryStore()
		cache := &recordingCache{}
		c := New(Env{Store: store, Cache: cache}).SetHandle("test")

		require.NoError(t, c.Save(ctx))

		assert.Equal(t, 1, store.puts)
		assert.Contains(t, store.snapshots, "test")
		assert.Equal(t, []string{"delete:collection-handles", "prefix:collection:test"}, cache.calls)
	})

	t.Run("missing handle", func(t *testing.T) {
		c := New(Env{Store: newMemoryStore()})
		assert.ErrorIs(t, c.Save(ctx), ErrMissingHandle)
	})

	t.Run("missing store", func(t *testing.T) {
		c := New(Env{}).SetHandle("test")
		assert.ErrorIs(t, c.Save(ctx), ErrNoStore)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		store := newMemoryStore()
		store.failPut = boom
		cache := &recordingCache{}

		err := New(Env{Store: store, Cache: cache}).SetHandle("test").Save(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "test")
		assert.Empty(t, cache.calls)
	})

	t.Run("rename moves the collection", func(t *testing.T) {
		store := newMemoryStore()
		cache := &recordingCache{}
		c := New(Env{Store: store, Cache: cache}).SetHandle("news")
		require.NoError(t, c.Save(ctx))
		cache.calls = nil

		c.SetHandle("articles")
		require.NoError(t, c.Save(ctx))

		assert.NotContains(t, store.snapshots, "news")
		assert.Contains(t, store.snapshots, "articles")
		assert.Equal(t, []string{
			"delete:collection-handles", "prefix:collection:news",
			"delete:collection-handles", "prefix:collection:articles",
		}, cache.calls)
	})
}

func TestCollection_SaveHooks(t *testing.T) {
	ctx := context.Background()
	executor := hooks.NewExecutor[*Collection](nil, nil)

	var order []string
	executor.On(hooks.BeforeSave, "title", func(ctx context.Context, c *Collection) error {
		order = append(order, "before:"+c.Handle())
		c.SetTitle("Hooked")
		return nil
	})
	executor.On(hooks.AfterSave, "log", func(ctx context.Context, c *Collection) error {
		order = append(order, "after:"+c.Handle())
		return nil
	})

	store := newMemoryStore()
	c := New(Env{Store: store, Hooks: executor}).SetHandle("blog")
	require.NoError(t, c.Save(ctx))

	assert.Equal(t, []string{"before:blog", "after:blog"}, order)
	assert.Equal(t, "Hooked", store.snapshots["blog"].Title)

	t.Run("failing before hook aborts", func(t *testing.T) {
		failing := hooks.NewExecutor[*Collection](nil, nil)
		failing.On(hooks.BeforeSave, "reject", func(ctx context.Context, c *Collection) error {
			return errors.New("rejected")
		})

		store := newMemoryStore()
		err := New(Env{Store: store, Hooks: failing}).SetHandle("blog").Save(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "before_save:reject")
		assert.Equal(t, 0, store.puts)
	})
}

func TestCollection_Delete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	cache := &recordingCache{}

	var deleted string
	executor := hooks.NewExecutor[*Collection](nil, nil)
	executor.On(hooks.AfterDelete, "record", func(ctx context.Context, c *Collection) error {
		deleted = c.Handle()
		return nil
	})

	c := New(Env{Store: store, Cache: cache, Hooks: executor}).SetHandle("blog")
	require.NoError(t, c.Save(ctx))
	cache.calls = nil

	require.NoError(t, c.Delete(ctx))
	assert.Empty(t, store.snapshots)
	assert.Equal(t, "blog", deleted)
	assert.Equal(t, []string{"delete:collection-handles", "prefix:collection:blog"}, cache.calls)

	err := c.Delete(ctx)
	assert.True(t, IsNotFound(err))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	env := Env{Sites: multiSite(t), RevisionsEnabled: true}

	original := New(env).
		SetHandle("blog").
		SetTitle("Blog").
		SetRoute("/blog/{slug}").
		SetTemplate("post").
		SetLayout("main").
		SetSites([]string{"en", "fr"}).
		SetCascade(map[string]any{"author": "jane"}).
		SetEntryBlueprints([]string{"article"}).
		SetDated(true).
		SetOrderable(true).
		SetFutureDateBehavior(DatePrivate).
		SetPastDateBehavior(DateUnlisted).
		SetDefaultPublishState(false).
		SetRevisionsEnabled(true).
		SetEntryPosition("a", 1).
		SetEntryPosition("b", 5)

	snapshot := original.Snapshot()
	assert.Equal(t, map[int]string{1: "a", 5: "b"}, snapshot.Positions)

	restored := FromSnapshot(snapshot, env)
	assert.Equal(t, snapshot, restored.Snapshot())
	assert.Equal(t, []string{"a", "b"}, restored.EntryOrder())
	assert.Equal(t, []string{"en", "fr"}, restored.Sites())
	assert.True(t, restored.RevisionsEnabled())
	assert.Equal(t, "jane", restored.CascadeValue("author"))

	// snapshot cascade does not alias the collection
	snapshot.Cascade["author"] = "john"
	assert.Equal(t, "jane", original.CascadeValue("author"))
}

func TestDecodeSnapshot(t *testing.T) {
	data := []byte(`{
		"handle": "blog",
		"inject": {
			"per_page": 10,
			"big": 9007199254740993,
			"huge": 1e300,
			"ratio": 1.5,
			"seo": {"priority": 3, "weight": 0.25},
			"tags": [1, "two", 3.5]
		},
		"positions": {"-9223372036854775808": "first", "9223372036854775807": "last"}
	}`)

	s, err := DecodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, "blog", s.Handle)
	assert.Equal(t, 10, s.Cascade["per_page"])
	assert.Equal(t, 9007199254740993, s.Cascade["big"])
	assert.Equal(t, 1e300, s.Cascade["huge"])
	assert.Equal(t, 1.5, s.Cascade["ratio"])
	assert.Equal(t, map[string]any{"priority": 3, "weight": 0.25}, s.Cascade["seo"])
	assert.Equal(t, []any{1, "two", 3.5}, s.Cascade["tags"])
	assert.Equal(t, map[int]string{math.MinInt: "first", math.MaxInt: "last"}, s.Positions)

	_, err = DecodeSnapshot([]byte("{"))
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "collection:blog", CacheKey("blog"))
	assert.NotEqual(t, HandlesCacheKey, CacheKey("handles"))
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	repo := NewRepository(Env{Store: store})

	require.NoError(t, repo.Make("news").SetRoute("/news/{slug}").Save(ctx))
	require.NoError(t, repo.Save(ctx, repo.Make("blog")))

	found, err := repo.Find(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, "/news/{slug}", found.Route())

	_, err = repo.Find(ctx, "missing")
	assert.True(t, IsNotFound(err))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "blog", all[0].Handle())
	assert.Equal(t, "news", all[1].Handle())

	// a found collection saves under its own handle without a rename
	require.NoError(t, found.Save(ctx))
	assert.Len(t, store.snapshots, 2)
}
