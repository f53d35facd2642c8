//go:build e2e && unix

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

const backendToken = "e2e-token"

// catalogBackend is an in-memory catalog API with token auth
type catalogBackend struct {
	mu    sync.Mutex
	books map[int]map[string]any
	next  int
}

func newCatalogBackend(t *testing.T) *httptest.Server {
	t.Helper()
	b := &catalogBackend{
		books: map[int]map[string]any{
			7: {"id": 7, "title_cyr": "Вий", "title_lat": "Viy", "publisher": "Smirdin", "is_active": true, "categories": []int{1}, "authors": []int{4}},
			9: {"id": 9, "title_cyr": "Тарас Бульба", "title_lat": "Taras Bulba", "is_active": false, "categories": []int{1}, "authors": []int{4}},
		},
		next: 10,
	}
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)
	return srv
}

func (b *catalogBackend) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/auth/login/", func(w http.ResponseWriter, req *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(req.Body).Decode(&creds)
		if creds.Username != "admin" || creds.Password != "secret" {
			http.Error(w, `{"detail":"Invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"token": backendToken})
	}).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer "+backendToken {
				http.Error(w, `{"detail":"Authentication credentials were not provided."}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	api.HandleFunc("/books/", b.listBooks).Methods(http.MethodGet)
	api.HandleFunc("/books/{id:[0-9]+}/", b.deleteBook).Methods(http.MethodDelete)
	api.HandleFunc("/authors/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"id": 4, "name_cyr": "Гоголь", "name_lat": "Gogol", "date_of_birth": "1809-04-01"}})
	}).Methods(http.MethodGet)
	api.HandleFunc("/categories/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"id": 1, "name_cyr": "Проза", "name_lat": "Proza"}})
	}).Methods(http.MethodGet)
	for _, path := range []string{"/developers/", "/folklore/"} {
		api.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, []any{})
		}).Methods(http.MethodGet)
	}
	return r
}

func (b *catalogBackend) listBooks(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.books))
	for id := range b.next {
		if book, ok := b.books[id]; ok {
			out = append(out, book)
		}
	}
	writeJSON(w, out)
}

func (b *catalogBackend) deleteBook(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.books[id]; !ok {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		return
	}
	delete(b.books, id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
