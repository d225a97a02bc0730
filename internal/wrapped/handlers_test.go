package wrapped

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
}

type staticEntries []*dating.Entry

func (s staticEntries) List(context.Context, int64) ([]*dating.Entry, error) {
	return s, nil
}

func newTestRouter(fc *fakeCompleter, userID int64) *mux.Router {
	svc := NewService(NewMemoryStore(), staticEntries(someEntries()), NewGenerator(fc, time.Second, zap.NewNop()), zap.NewNop())
	h := NewHandler(svc)

	withUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}

	router := mux.NewRouter()
	router.Use(withUser)
	router.HandleFunc("/api/wrapped/generate", h.GenerateSlides).Methods("POST")
	api := router.PathPrefix("/api/v1/wrapped").Subrouter()
	api.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	api.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/selection", h.SelectTemplate).Methods("POST")
	api.HandleFunc("/sessions/{id}/selection/{templateID}", h.DeselectTemplate).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/templates", h.AddCustomTemplate).Methods("POST")
	api.HandleFunc("/sessions/{id}/templates/{templateID}", h.DeleteCustomTemplate).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/generate", h.Generate).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", h.Reset).Methods("POST")
	return router
}

func do(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestGenerateEndpointValidation(t *testing.T) {
	fc := &fakeCompleter{}
	router := newTestRouter(fc, 1)

	tests := []struct {
		name string
		body string
	}{
		{"empty entries", `{"dateEntries":[],"selectedTemplates":[{"id":"total-dates","title":"T"}]}`},
		{"missing entries", `{"selectedTemplates":[{"id":"total-dates","title":"T"}]}`},
		{"entries not an array", `{"dateEntries":"lots","selectedTemplates":[{"id":"total-dates","title":"T"}]}`},
		{"missing templates", `{"dateEntries":[{"person_name":"A"}]}`},
		{"template without id", `{"dateEntries":[{"person_name":"A"}],"selectedTemplates":[{"title":"T"}]}`},
		{"not json", `dates please`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, "POST", "/api/wrapped/generate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	require.Zero(t, fc.calls)
}

func TestGenerateEndpoint(t *testing.T) {
	fc := &fakeCompleter{content: `{"slides":[{"id":"total-dates","title":"Numbers","type":"stat","data":{"dates":1}}]}`}
	router := newTestRouter(fc, 1)

	body := `{"dateEntries":[{"person_name":"A","num_dates":1}],"selectedTemplates":[{"id":"total-dates","title":"Numbers","type":"stat"}]}`
	rec := do(router, "POST", "/api/wrapped/generate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Slides, 1)
	require.Equal(t, "Numbers", resp.Slides[0].Title)

	fc.err = errors.New("upstream down")
	rec = do(router, "POST", "/api/wrapped/generate", body)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *Session {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var s Session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return &s
}

func TestSessionFlowOverHTTP(t *testing.T) {
	fc := &fakeCompleter{content: `{"slides":[{"id":"red-flags","data":{}}]}`}
	router := newTestRouter(fc, 1)

	rec := do(router, "POST", "/api/v1/wrapped/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := sessionFrom(t, rec).ID
	base := "/api/v1/wrapped/sessions/" + id

	rec = do(router, "POST", base+"/selection", SelectRequest{TemplateID: "red-flags"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, "POST", base+"/templates", CustomTemplateRequest{Title: "Mine", Type: TypeInsight})
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := sessionFrom(t, rec)
	require.Len(t, sess.Selected, 2)
	custom := sess.Custom[0].ID

	rec = do(router, "DELETE", base+"/templates/total-dates", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, "DELETE", base+"/templates/"+custom, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, "POST", base+"/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess = sessionFrom(t, rec)
	require.Equal(t, StateRendered, sess.State)
	require.Len(t, sess.Slides, 1)

	rec = do(router, "POST", base+"/selection", SelectRequest{TemplateID: "age-range"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, "POST", base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, StateBrowsing, sessionFrom(t, rec).State)

	rec = do(router, "GET", base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionGenerateFailureKeepsSelection(t *testing.T) {
	fc := &fakeCompleter{content: `{"slides":[]}`}
	router := newTestRouter(fc, 1)

	id := sessionFrom(t, do(router, "POST", "/api/v1/wrapped/sessions", nil)).ID
	base := "/api/v1/wrapped/sessions/" + id
	do(router, "POST", base+"/selection", SelectRequest{TemplateID: "total-dates"})

	rec := do(router, "POST", base+"/generate", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	sess := sessionFrom(t, do(router, "GET", base, nil))
	require.Equal(t, StateBrowsing, sess.State)
	require.Equal(t, []string{"total-dates"}, sess.Selected)
	require.NotEmpty(t, sess.LastError)
}

func TestSessionsAreOwnerScoped(t *testing.T) {
	fc := &fakeCompleter{}
	svc := NewService(NewMemoryStore(), staticEntries(nil), NewGenerator(fc, time.Second, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	_, err = svc.GetSession(ctx, 2, sess.ID)
	require.Error(t, err)
	_, err = svc.Select(ctx, 2, sess.ID, "total-dates")
	require.Error(t, err)
	_, err = svc.CreateSession(ctx, 0)
	require.Error(t, err)
}

func TestListTemplatesByTag(t *testing.T) {
	router := newTestRouter(&fakeCompleter{}, 1)

	rec := do(router, "GET", "/api/v1/wrapped/templates?tag=time", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var templates []Template
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	require.Len(t, templates, 3)
}
