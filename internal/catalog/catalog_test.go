package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/api"
	"catalogadmin/internal/form"
	"catalogadmin/internal/multiselect"
)

func TestRefsAcceptIDsAndObjects(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7,
		"title_cyr": "Вий",
		"categories": [1, 2],
		"authors": [{"id": 4, "name_cyr": "Гоголь", "name_lat": "Gogol"}],
		"publication_year": null
	}`), &b))
	assert.Equal(t, []int{1, 2}, b.Categories.IDs())
	assert.Equal(t, Refs{{ID: 4, NameCyr: "Гоголь", NameLat: "Gogol"}}, b.Authors)
	assert.Nil(t, b.PublicationYear)
	assert.Equal(t, "#1, #2", b.Categories.Names(Latin))
	assert.Equal(t, "Gogol", b.Authors.Names(Latin))

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"authors":[4]`)

	var r Refs
	assert.Error(t, json.Unmarshal([]byte(`[{"name":"no id"}]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &r))
	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.Nil(t, r)
}

func TestLanguage(t *testing.T) {
	l, err := ParseLanguage(" LAT ")
	require.NoError(t, err)
	assert.Equal(t, Latin, l)

	l, err = ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, Cyrillic, l)

	_, err = ParseLanguage("de")
	assert.Error(t, err)

	assert.Equal(t, "Gogol", Latin.Pick("Гоголь", "Gogol"))
	assert.Equal(t, "Гоголь", Cyrillic.Pick("Гоголь", "Gogol"))
	assert.Equal(t, "Гоголь", Latin.Pick("Гоголь", " "), "blank falls back to the other script")
	assert.Equal(t, Latin, Cyrillic.Toggle())
}

func TestOptionBuilders(t *testing.T) {
	authors := []Author{{ID: 1, NameCyr: "Гоголь", NameLat: "Gogol"}, {ID: 2, NameCyr: "Пушкин"}}
	assert.Equal(t, []multiselect.Option[any]{
		{Label: "Gogol", Value: 1},
		{Label: "Пушкин", Value: 2},
	}, AuthorOptions(authors, Latin))

	assert.Empty(t, CategoryOptions(nil, Latin))
}

// fakeBackend serves canned listings and records writes
type fakeBackend struct {
	writes []map[string]any
	paths  []string
}

func (f *fakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	list := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	r.HandleFunc("/categories/", list([]Category{
		{ID: 1, NameCyr: "Проза", NameLat: "Proza"},
		{ID: 2, NameCyr: "Повісті", NameLat: "Povisti"},
	})).Methods(http.MethodGet)
	r.HandleFunc("/authors/", list(map[string]any{
		"count":   1,
		"results": []Author{{ID: 4, NameCyr: "Гоголь", NameLat: "Gogol"}},
	})).Methods(http.MethodGet)
	r.HandleFunc("/books/", list([]json.RawMessage{
		json.RawMessage(`{"id":7,"title_cyr":"Вий","title_lat":"Viy","publication_year":1835,"publisher":"Smirdin","authors":[4],"categories":[{"id":1,"name_cyr":"Проза","name_lat":"Proza"}],"is_active":true,"order":2}`),
	})).Methods(http.MethodGet)
	write := func(w http.ResponseWriter, req *http.Request) {
		var values map[string]any
		_ = json.NewDecoder(req.Body).Decode(&values)
		f.writes = append(f.writes, values)
		f.paths = append(f.paths, req.Method+" "+req.URL.Path)
		id := 8
		if v, ok := mux.Vars(req)["id"]; ok && v == "7" {
			id = 7
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
	}
	r.HandleFunc("/books/", write).Methods(http.MethodPost)
	r.HandleFunc("/books/{id}/", write).Methods(http.MethodPut)
	r.HandleFunc("/books/{id}/", func(w http.ResponseWriter, req *http.Request) {
		f.paths = append(f.paths, req.Method+" "+req.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	return r
}

func newService(t *testing.T) (*Service, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{}
	srv := httptest.NewServer(fake.router())
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, api.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	return NewService(client), fake
}

func TestBindingsCoverEveryKind(t *testing.T) {
	svc, _ := newService(t)
	bindings := svc.Bindings()
	require.Len(t, bindings, len(Kinds))
	for i, b := range bindings {
		assert.Equal(t, Kinds[i], b.Kind())
		assert.NotEmpty(t, b.Title())
		assert.NotEmpty(t, b.Columns())
	}
	_, ok := svc.Binding(Kind("nope"))
	assert.False(t, ok)
}

func TestBookListRecords(t *testing.T) {
	svc, _ := newService(t)
	books, _ := svc.Binding(KindBooks)

	records, err := books.List(context.Background(), Latin)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 7, rec.ID)
	assert.Equal(t, []string{"7", "Viy", "Smirdin", "Proza", "#4", "Active", "2"}, rec.Cells)
	assert.Len(t, rec.Cells, len(books.Columns()))
	assert.Equal(t, []int{4}, rec.Values["authors"])
	assert.Equal(t, []int{1}, rec.Values["categories"])
	assert.Equal(t, 1835, rec.Values["publication_year"])
	assert.Equal(t, true, rec.Values["is_active"])
}

func TestBookFieldsCarryRelatedOptions(t *testing.T) {
	svc, _ := newService(t)
	books, _ := svc.Binding(KindBooks)

	fields, err := books.Fields(context.Background(), 0, Cyrillic)
	require.NoError(t, err)

	byName := map[string]form.Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}
	assert.Equal(t, []multiselect.Option[any]{{Label: "Гоголь", Value: 4}}, byName["authors"].Options)
	assert.Len(t, byName["categories"].Options, 2)
	assert.True(t, byName["categories"].Required)
	assert.Equal(t, form.TypeSelect, byName["is_active"].Type)
	assert.Equal(t, []multiselect.Option[any]{{Label: "Active", Value: true}, {Label: "Inactive", Value: false}}, byName["is_active"].Options)
	assert.True(t, byName["id"].ReadOnly)
}

func TestEditFormRoundTrip(t *testing.T) {
	svc, fake := newService(t)
	books, _ := svc.Binding(KindBooks)
	ctx := context.Background()

	records, err := books.List(ctx, Latin)
	require.NoError(t, err)
	fields, err := books.Fields(ctx, 7, Latin)
	require.NoError(t, err)

	f := form.New("Edit book", fields, records[0].Values)
	values, err := f.Submit()
	require.NoError(t, err)

	id, err := books.Save(ctx, records[0].ID, values)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	require.Len(t, fake.writes, 1)
	sent := fake.writes[0]
	assert.NotContains(t, sent, "id")
	assert.Equal(t, []any{float64(4)}, sent["authors"])
	assert.Equal(t, []any{float64(1)}, sent["categories"])
	assert.Equal(t, float64(1835), sent["publication_year"])
	assert.Equal(t, true, sent["is_active"])
	assert.Equal(t, "PUT /books/7/", fake.paths[0])
}

func TestCreateAndDelete(t *testing.T) {
	svc, fake := newService(t)
	books, _ := svc.Binding(KindBooks)
	ctx := context.Background()

	id, err := books.Save(ctx, 0, map[string]any{"title_cyr": "Нос", "title_lat": "Nos", "categories": []any{1}})
	require.NoError(t, err)
	assert.Equal(t, 8, id)

	require.NoError(t, books.Delete(ctx, 8))
	assert.Equal(t, []string{"POST /books/", "DELETE /books/8/"}, fake.paths)
}

func TestCategoryParentExcludesItself(t *testing.T) {
	svc, _ := newService(t)
	categories, _ := svc.Binding(KindCategories)
	ctx := context.Background()

	parentOf := func(id int) form.Field {
		fields, err := categories.Fields(ctx, id, Latin)
		require.NoError(t, err)
		for _, f := range fields {
			if f.Name == "parent" {
				return f
			}
		}
		t.Fatal("no parent field")
		return form.Field{}
	}

	assert.Equal(t, []multiselect.Option[any]{{Label: "Povisti", Value: 2}}, parentOf(1).Options)
	assert.Len(t, parentOf(0).Options, 2, "a new category may pick any parent")
	assert.False(t, parentOf(0).Required)
}

func TestAuthorBlankDeathDate(t *testing.T) {
	svc, _ := newService(t)
	authors, _ := svc.Binding(KindAuthors)
	ctx := context.Background()

	records, err := authors.List(ctx, Latin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Cells[4])

	fields, err := authors.Fields(ctx, records[0].ID, Latin)
	require.NoError(t, err)
	values := records[0].Values
	values["date_of_birth"] = "1809-04-01"
	f := form.New("Edit author", fields, values)
	out, err := f.Submit()
	require.NoError(t, err)
	assert.Contains(t, out, "date_of_death")
	assert.Nil(t, out["date_of_death"], "blank dates are sent as null")
}
