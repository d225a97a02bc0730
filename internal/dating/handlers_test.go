package dating

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/datewrapped/internal/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
}

// withUser stands in for the auth middleware.
func withUser(id int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), id)))
		})
	}
}

func newTestRouter(userID int64) *mux.Router {
	svc, _ := newTestService()
	h := NewHandler(svc)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1/entries").Subrouter()
	api.Use(withUser(userID))
	api.HandleFunc("", h.ListEntries).Methods("GET")
	api.HandleFunc("", h.UpsertEntry).Methods("POST")
	api.HandleFunc("/fields", h.GetFields).Methods("GET")
	api.HandleFunc("/{id}", h.UpdateEntry).Methods("PUT")
	api.HandleFunc("/{id}", h.DeleteEntry).Methods("DELETE")
	return router
}

func do(router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestEntryLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(1)

	rec, env := do(router, "POST", "/api/v1/entries", RequestFromEntry(NewBlank(0)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Entry
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	req := RequestFromEntry(&created)
	req.Rating = 5
	rec, env = do(router, "PUT", "/api/v1/entries/"+created.ID, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(router, "GET", "/api/v1/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Entry
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, 5, list[0].Rating)
	require.NotNil(t, list[0].RedFlags)

	rec, _ = do(router, "DELETE", "/api/v1/entries/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = do(router, "GET", "/api/v1/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, string(env.Data))
}

func TestUpsertEntryValidation(t *testing.T) {
	router := newTestRouter(1)

	body := RequestFromEntry(NewBlank(0))
	body.Hotness = intPtr(12)
	rec, env := do(router, "POST", "/api/v1/entries", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, FieldHotness, env.Field)

	body = RequestFromEntry(NewBlank(0))
	body.Platform = ""
	rec, env = do(router, "POST", "/api/v1/entries", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "platform", env.Field)

	rec, _ = do(router, "PUT", "/api/v1/entries/9d2b6f3e-1c4a-4e8b-a7f0-0e1d2c3b4a59", RequestFromEntry(NewBlank(0)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntriesRequireUser(t *testing.T) {
	router := newTestRouter(0)

	rec, _ := do(router, "GET", "/api/v1/entries", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetFields(t *testing.T) {
	router := newTestRouter(1)

	rec, env := do(router, "GET", "/api/v1/entries/fields", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fields []FieldSpec
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	require.Len(t, fields, len(Fields))
	require.Equal(t, PlatformOptions, fields[1].Options)
}
