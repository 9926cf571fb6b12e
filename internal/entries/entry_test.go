package entries

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/folio-cms/folio/internal/augment"
	"github.com/folio-cms/folio/internal/collections"
	"github.com/folio-cms/folio/internal/fields"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCollection(t *testing.T) *collections.Collection {
	t.Helper()

	registry := fields.NewRegistry()
	require.NoError(t, registry.Register(fields.NewBlueprint("article", "Article",
		fields.NewField("title", fields.TypeText),
		fields.NewField("content", fields.TypeMarkdown),
		fields.NewField("featured", fields.TypeToggle),
	)))
	require.NoError(t, registry.Register(fields.NewBlueprint("link", "Link",
		fields.NewField("title", fields.TypeText),
		fields.NewField("target", fields.TypeText),
	)))

	return collections.New(collections.Env{Blueprints: registry}).
		SetHandle("blog").
		SetRoute("/blog/{slug}").
		SetEntryBlueprints([]string{"article", "link"})
}

func TestNew(t *testing.T) {
	e := New(nil)
	_, err := uuid.Parse(e.ID())
	require.NoError(t, err)
	assert.NotEqual(t, e.ID(), New(nil).ID())
	assert.True(t, e.Published())
	assert.Nil(t, e.Blueprint())
}

func TestEntry_Blueprint(t *testing.T) {
	c := createTestCollection(t)

	e := New(c)
	assert.Equal(t, "article", e.Blueprint().Handle)

	e.SetBlueprint("link")
	assert.Equal(t, "link", e.Blueprint().Handle)

	e.SetBlueprint("unknown")
	assert.Equal(t, "article", e.Blueprint().Handle)
}

func TestEntry_Published(t *testing.T) {
	c := createTestCollection(t).SetDefaultPublishState(false)
	e := New(c)
	assert.False(t, e.Published())

	e.SetPublished(true)
	assert.True(t, e.Published())
}

func TestEntry_URL(t *testing.T) {
	c := createTestCollection(t)
	e := New(c).SetSlug("hello-world")

	url, ok := e.URL()
	require.True(t, ok)
	assert.Equal(t, "/blog/hello-world", url)

	c.SetRoute("/{collection}/{id}")
	url, _ = e.URL()
	assert.Equal(t, "/blog/"+e.ID(), url)

	c.SetRoute("")
	_, ok = e.URL()
	assert.False(t, ok)
}

func TestEntry_Order(t *testing.T) {
	c := createTestCollection(t).SetOrderable(true)
	first := New(c)
	second := New(c)

	_, ok := first.Order()
	assert.False(t, ok)

	c.SetEntryPosition(second.ID(), 10)
	c.SetEntryPosition(first.ID(), 20)

	order, ok := first.Order()
	require.True(t, ok)
	assert.Equal(t, 2, order)

	order, _ = second.Order()
	assert.Equal(t, 1, order)
}

func TestAugmented_Keys(t *testing.T) {
	e := New(createTestCollection(t))

	a := Augmented(e, "https://example.com/")
	assert.Equal(t, []string{
		"title", "content", "featured",
		"id", "slug", "url", "permalink", "order", "collection", "published",
	}, a.Keys())
}

func TestAugmented_Values(t *testing.T) {
	c := createTestCollection(t)
	e := New(c).
		SetSlug("first-post").
		Set("title", "First Post").
		Set("content", "# Hello").
		Set("featured", "yes").
		Set("extra", "raw")
	c.SetEntryPosition(e.ID(), 4)

	a := Augmented(e, "https://example.com/")

	t.Run("declared fields are wrapped", func(t *testing.T) {
		title, ok := a.Get("title").(*fields.Value)
		require.True(t, ok)
		assert.Equal(t, "First Post", title.Raw())
		assert.Same(t, e, title.Parent())

		content := a.Get("content").(*fields.Value)
		assert.Contains(t, content.Value(), "<h1>Hello</h1>")

		featured := a.Get("featured").(*fields.Value)
		assert.Equal(t, true, featured.Value())
	})

	t.Run("undeclared fields are raw", func(t *testing.T) {
		assert.Equal(t, "raw", a.Get("extra"))
		assert.Nil(t, a.Get("missing"))
	})

	t.Run("computed keys", func(t *testing.T) {
		value, strategy := a.Resolve("permalink")
		assert.Equal(t, augment.ComputedSelf, strategy)
		assert.Equal(t, "https://example.com/blog/first-post", value)

		value, strategy = a.Resolve("url")
		assert.Equal(t, augment.ComputedOnRecord, strategy)
		assert.Equal(t, "/blog/first-post", value)

		assert.Equal(t, e.ID(), a.Get("id"))
		assert.Equal(t, 1, a.Get("order"))
		assert.Equal(t, "blog", a.Get("collection"))
		assert.Equal(t, true, a.Get("published"))
	})

	t.Run("supplement wins over stored", func(t *testing.T) {
		e.SetSupplement("title", "Supplemented")
		defer delete(e.supplements, "title")

		value, strategy := a.Resolve("title")
		assert.Equal(t, augment.SupplementOnRecord, strategy)
		assert.Equal(t, "Supplemented", value.(*fields.Value).Raw())
	})

	t.Run("except", func(t *testing.T) {
		result := a.Except("content", "id", "slug", "url", "permalink", "order", "collection", "published")
		assert.Equal(t, []string{"title", "featured"}, result.Keys())

		encoded, err := json.Marshal(result)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"First Post","featured":true}`, string(encoded))
	})
}

func TestAugmented_NoRoute(t *testing.T) {
	c := createTestCollection(t).SetRoute("")
	a := Augmented(New(c), "https://example.com")
	assert.Nil(t, a.Get("url"))
	assert.Nil(t, a.Get("permalink"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`id: 3f2b8c1e-0000-4000-8000-000000000001
slug: hello
blueprint: link
published: false
date: 2024-03-01
title: Hello
target: https://example.com
`), 0644))

	e, err := Load(path, createTestCollection(t))
	require.NoError(t, err)

	assert.Equal(t, "3f2b8c1e-0000-4000-8000-000000000001", e.ID())
	assert.Equal(t, "hello", e.Slug())
	assert.Equal(t, "link", e.Blueprint().Handle)
	assert.False(t, e.Published())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), e.Date())
	assert.Equal(t, "Hello", e.Get("title"))
	assert.Equal(t, "https://example.com", e.Get("target"))
	assert.Nil(t, e.Get("slug"), "reserved keys are not stored data")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Parse([]byte("date: yesterday\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry date")

	_, err = Parse([]byte("title: [unclosed\n"), nil)
	assert.Error(t, err)
}
