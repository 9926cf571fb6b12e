package augment

import (
	"encoding/json"
	"testing"

	"github.com/folio-cms/folio/internal/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord exercises every optional capability
type testRecord struct {
	data        map[string]any
	supplements map[string]any
	accessors   map[string]func() any
	blueprint   *fields.Blueprint
}

func (r *testRecord) Get(handle string) any { return r.data[handle] }

func (r *testRecord) Supplement(handle string) any { return r.supplements[handle] }

func (r *testRecord) Accessor(name string) (func() any, bool) {
	fn, ok := r.accessors[name]
	return fn, ok
}

func (r *testRecord) Blueprint() *fields.Blueprint { return r.blueprint }

func createTestBlueprint() *fields.Blueprint {
	return fields.NewBlueprint("article", "Article",
		fields.NewField("title", fields.TypeText),
		fields.NewField("content", fields.TypeMarkdown),
		fields.NewField("featured", fields.TypeToggle),
	)
}

func createTestRecord() *testRecord {
	return &testRecord{
		data: map[string]any{
			"title":       "Hello",
			"content":     "*hi*",
			"unlisted":    "raw",
			"select":      "stored select",
			"blog_author": "stored author",
		},
		supplements: map[string]any{},
		accessors:   map[string]func() any{},
		blueprint:   createTestBlueprint(),
	}
}

func TestKeys_SchemaOrderThenComputed(t *testing.T) {
	computed := NewComputedFuncs().
		Add("id", func() any { return "123" }).
		Add("title", func() any { return "computed title" }).
		Add("url", func() any { return "/hello" })

	a := New(createTestRecord(), WithComputed(computed))

	assert.Equal(t, []string{"title", "content", "featured", "id", "url"}, a.Keys())
}

func TestKeys_NoBlueprint(t *testing.T) {
	a := New(MapRecord{"title": "Hello"})
	assert.Empty(t, a.Keys())
	assert.Equal(t, 0, a.All().Len())
}

func TestSelect_AllKeys(t *testing.T) {
	computed := NewComputedFuncs().Add("id", func() any { return "123" })
	a := New(createTestRecord(), WithComputed(computed))

	result := a.Select()
	assert.Equal(t, []string{"title", "content", "featured", "id"}, result.Keys())

	all := a.All()
	assert.Equal(t, result.Keys(), all.Keys())

	featured, ok := result.Get("featured")
	require.True(t, ok)
	require.IsType(t, &fields.Value{}, featured)
	assert.Nil(t, featured.(*fields.Value).Raw())
	assert.Equal(t, false, featured.(*fields.Value).Value())

	id, _ := result.Get("id")
	assert.Equal(t, "123", id)
}

func TestSelect_NamedKeys(t *testing.T) {
	a := New(createTestRecord())

	result := a.Select("unlisted", "title", "missing")
	assert.Equal(t, []string{"unlisted", "title", "missing"}, result.Keys())

	unlisted, _ := result.Get("unlisted")
	assert.Equal(t, "raw", unlisted)

	missing, ok := result.Get("missing")
	assert.True(t, ok)
	assert.Nil(t, missing)
}

func TestExcept(t *testing.T) {
	computed := NewComputedFuncs().Add("id", func() any { return "123" })
	a := New(createTestRecord(), WithComputed(computed))

	result := a.Except("content", "id", "not_a_key")
	assert.Equal(t, []string{"title", "featured"}, result.Keys())

	none := a.Except(a.Keys()...)
	assert.Equal(t, 0, none.Len())
}

func TestGet_UndeclaredFieldIsRaw(t *testing.T) {
	a := New(createTestRecord())
	assert.Equal(t, "raw", a.Get("unlisted"))
}

func TestGet_DeclaredFieldIsWrapped(t *testing.T) {
	record := createTestRecord()
	a := New(record)

	value, ok := a.Get("title").(*fields.Value)
	require.True(t, ok)
	assert.Equal(t, "Hello", value.Raw())
	assert.Equal(t, "title", value.Handle())
	assert.Equal(t, "text", value.Fieldtype().Handle())
	assert.Same(t, record, value.Parent())

	content := a.Get("content").(*fields.Value)
	assert.Equal(t, "<p><em>hi</em></p>\n", content.Value())
}

func TestGet_SupplementWinsOverStored(t *testing.T) {
	record := createTestRecord()
	record.supplements["title"] = "Supplemented"
	a := New(record)

	value, strategy := a.Resolve("title")
	assert.Equal(t, SupplementOnRecord, strategy)
	assert.Equal(t, "Supplemented", value.(*fields.Value).Raw())

	record.supplements["unlisted"] = "supp"
	assert.Equal(t, "supp", a.Get("unlisted"))
}

func TestGet_NilSupplementFallsBackToStored(t *testing.T) {
	record := createTestRecord()
	record.supplements["title"] = nil

	value, strategy := New(record).Resolve("title")
	assert.Equal(t, StoredOnRecord, strategy)
	assert.Equal(t, "Hello", value.(*fields.Value).Raw())
}

func TestGet_RecordAccessorIsWrapped(t *testing.T) {
	record := createTestRecord()
	record.accessors["title"] = func() any { return "From accessor" }
	record.accessors["blogAuthor"] = func() any { return "accessor author" }
	record.supplements["title"] = "Supplemented"

	a := New(record)

	value, strategy := a.Resolve("title")
	assert.Equal(t, ComputedOnRecord, strategy)
	assert.Equal(t, "From accessor", value.(*fields.Value).Raw())

	author, strategy := a.Resolve("blog_author")
	assert.Equal(t, ComputedOnRecord, strategy)
	assert.Equal(t, "accessor author", author)
}

func TestGet_EngineAccessorIsNotWrapped(t *testing.T) {
	record := createTestRecord()
	record.accessors["title"] = func() any { return "From record" }

	computed := NewComputedFuncs().Add("title", func() any { return "From engine" })
	value, strategy := New(record, WithComputed(computed)).Resolve("title")

	assert.Equal(t, ComputedSelf, strategy)
	assert.Equal(t, "From engine", value)
}

func TestGet_ReservedNamesSkipComputed(t *testing.T) {
	record := createTestRecord()
	record.accessors["except"] = func() any { return "record except" }

	computed := NewComputedFuncs().
		Add("select", func() any { return "engine select" }).
		Add("except", func() any { return "engine except" })

	a := New(record, WithComputed(computed))

	value, strategy := a.Resolve("select")
	assert.Equal(t, StoredOnRecord, strategy)
	assert.Equal(t, "stored select", value)

	value, strategy = a.Resolve("except")
	assert.Equal(t, ComputedOnRecord, strategy)
	assert.Equal(t, "record except", value)
}

func TestGet_IsDeterministic(t *testing.T) {
	record := createTestRecord()
	a := New(record)

	first := a.Get("title").(*fields.Value)
	second := a.Get("title").(*fields.Value)
	assert.True(t, first.Equal(second))
	assert.Equal(t, map[string]any{
		"title":       "Hello",
		"content":     "*hi*",
		"unlisted":    "raw",
		"select":      "stored select",
		"blog_author": "stored author",
	}, record.data)
}

func TestWrap(t *testing.T) {
	record := createTestRecord()

	assert.Equal(t, 5, Wrap(5, "unknown", record))

	wrapped, ok := Wrap("1", "featured", record).(*fields.Value)
	require.True(t, ok)
	assert.Equal(t, true, wrapped.Value())

	assert.Equal(t, "x", Wrap("x", "title", MapRecord{}))
}

func TestResult_MarshalJSONKeepsOrder(t *testing.T) {
	computed := NewComputedFuncs().Add("id", func() any { return "123" })
	a := New(createTestRecord(), WithComputed(computed))

	data, err := json.Marshal(a.Select("id", "title", "featured"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"123","title":"Hello","featured":false}`, string(data))

	empty, err := json.Marshal(a.Except(a.Keys()...))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestResult_Map(t *testing.T) {
	a := New(createTestRecord())
	m := a.Select("unlisted").Map()
	assert.Equal(t, map[string]any{"unlisted": "raw"}, m)
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "computed_self", ComputedSelf.String())
	assert.Equal(t, "computed_on_record", ComputedOnRecord.String())
	assert.Equal(t, "supplement_on_record", SupplementOnRecord.String())
	assert.Equal(t, "stored_on_record", StoredOnRecord.String())
	assert.Equal(t, "unknown", Strategy(42).String())
}
