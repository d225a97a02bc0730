// Package client talks to the datewrapped API and holds the client-side
// state: the signed-in session and the row editor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/dating"
	"github.com/imadgeboyega/datewrapped/internal/stats"
	"github.com/imadgeboyega/datewrapped/internal/wrapped"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	AccessToken() string
}

// API is a thin HTTP client for the REST endpoints. It is safe for
// concurrent use.
type API struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithTokens returns a copy of the client that authorizes requests with ts.
func (a *API) WithTokens(ts TokenSource) *API {
	c := *a
	c.tokens = ts
	return &c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
}

func (a *API) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if a.tokens != nil {
		if token := a.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperr.Storage(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Storage(op, err)
	}

	if resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	// the stateless generate endpoint answers without the envelope
	if _, ok := out.(*wrapped.GenerateResponse); ok {
		return json.Unmarshal(raw, out)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

// statusError turns an error response into the matching apperr kind.
func statusError(op string, status int, raw []byte) error {
	var env envelope
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		msg = env.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = apperr.ErrAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = apperr.ErrValidation
	case status == http.StatusNotFound:
		kind = apperr.ErrNotFound
	case status == http.StatusConflict || status == http.StatusTooManyRequests:
		kind = apperr.ErrConflict
	case status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		kind = apperr.ErrGeneration
	default:
		kind = apperr.ErrStorage
	}
	return &apperr.Error{Kind: kind, Op: op, Field: env.Field, Err: errors.New(msg)}
}

// Auth

func (a *API) SignUp(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	return a.authCall(ctx, "client.SignUp", "/api/auth/signup", auth.SignupRequest{
		Email: email, Password: password, ConfirmPassword: password,
	})
}

func (a *API) SignIn(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	return a.authCall(ctx, "client.SignIn", "/api/auth/signin", auth.SigninRequest{
		Email: email, Password: password,
	})
}

func (a *API) SignInWithGoogle(ctx context.Context, idToken string) (*auth.AuthResponse, error) {
	return a.authCall(ctx, "client.SignInWithGoogle", "/api/auth/google", auth.GoogleAuthRequest{IDToken: idToken})
}

func (a *API) Refresh(ctx context.Context, refreshToken string) (*auth.AuthResponse, error) {
	return a.authCall(ctx, "client.Refresh", "/api/auth/refresh", auth.RefreshTokenRequest{RefreshToken: refreshToken})
}

func (a *API) authCall(ctx context.Context, op, path string, body interface{}) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := a.do(ctx, op, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut revokes the session behind accessToken.
func (a *API) SignOut(ctx context.Context, accessToken string) error {
	c := a.WithTokens(staticToken(accessToken))
	return c.do(ctx, "client.SignOut", http.MethodPost, "/api/auth/logout", nil, nil)
}

func (a *API) Me(ctx context.Context) (*auth.User, error) {
	var out auth.User
	if err := a.do(ctx, "client.Me", http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type staticToken string

func (t staticToken) AccessToken() string { return string(t) }

// Entries

func (a *API) List(ctx context.Context) ([]*dating.Entry, error) {
	var out []*dating.Entry
	if err := a.do(ctx, "client.List", http.MethodGet, "/api/v1/entries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts e when it has no id and replaces the stored row otherwise.
func (a *API) Upsert(ctx context.Context, e *dating.Entry) (*dating.Entry, error) {
	var out dating.Entry
	method, path := http.MethodPost, "/api/v1/entries"
	if e.Identified() {
		method, path = http.MethodPut, "/api/v1/entries/"+url.PathEscape(e.ID)
	}
	if err := a.do(ctx, "client.Upsert", method, path, dating.RequestFromEntry(e), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Delete(ctx context.Context, id string) error {
	return a.do(ctx, "client.Delete", http.MethodDelete, "/api/v1/entries/"+url.PathEscape(id), nil, nil)
}

func (a *API) Stats(ctx context.Context) (*stats.Summary, error) {
	var out stats.Summary
	if err := a.do(ctx, "client.Stats", http.MethodGet, "/api/v1/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Wrapped

func (a *API) Templates(ctx context.Context, tag string) ([]wrapped.Template, error) {
	path := "/api/v1/wrapped/templates"
	if tag != "" {
		path += "?tag=" + url.QueryEscape(tag)
	}
	var out []wrapped.Template
	err := a.do(ctx, "client.Templates", http.MethodGet, path, nil, &out)
	return out, err
}

func (a *API) CreateWrappedSession(ctx context.Context) (*wrapped.Session, error) {
	return a.session(ctx, "client.CreateWrappedSession", http.MethodPost, "/api/v1/wrapped/sessions", nil)
}

func (a *API) WrappedSession(ctx context.Context, id string) (*wrapped.Session, error) {
	return a.session(ctx, "client.WrappedSession", http.MethodGet, sessionPath(id, ""), nil)
}

func (a *API) SelectTemplate(ctx context.Context, id, templateID string) (*wrapped.Session, error) {
	return a.session(ctx, "client.SelectTemplate", http.MethodPost, sessionPath(id, "/selection"),
		wrapped.SelectRequest{TemplateID: templateID})
}

func (a *API) DeselectTemplate(ctx context.Context, id, templateID string) (*wrapped.Session, error) {
	return a.session(ctx, "client.DeselectTemplate", http.MethodDelete,
		sessionPath(id, "/selection/"+url.PathEscape(templateID)), nil)
}

func (a *API) AddCustomTemplate(ctx context.Context, id string, req wrapped.CustomTemplateRequest) (*wrapped.Session, error) {
	return a.session(ctx, "client.AddCustomTemplate", http.MethodPost, sessionPath(id, "/templates"), req)
}

func (a *API) DeleteCustomTemplate(ctx context.Context, id, templateID string) (*wrapped.Session, error) {
	return a.session(ctx, "client.DeleteCustomTemplate", http.MethodDelete,
		sessionPath(id, "/templates/"+url.PathEscape(templateID)), nil)
}

func (a *API) GenerateWrapped(ctx context.Context, id string) (*wrapped.Session, error) {
	return a.session(ctx, "client.GenerateWrapped", http.MethodPost, sessionPath(id, "/generate"), nil)
}

func (a *API) ResetWrapped(ctx context.Context, id string) (*wrapped.Session, error) {
	return a.session(ctx, "client.ResetWrapped", http.MethodPost, sessionPath(id, "/reset"), nil)
}

// GenerateSlides calls the stateless generation endpoint.
func (a *API) GenerateSlides(ctx context.Context, entries []*dating.Entry, templates []wrapped.Template) ([]wrapped.Slide, error) {
	var out wrapped.GenerateResponse
	err := a.do(ctx, "client.GenerateSlides", http.MethodPost, "/api/wrapped/generate", wrapped.GenerateRequest{
		DateEntries:       entries,
		SelectedTemplates: templates,
	}, &out)
	return out.Slides, err
}

func (a *API) session(ctx context.Context, op, method, path string, body interface{}) (*wrapped.Session, error) {
	var out wrapped.Session
	if err := a.do(ctx, op, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(id, suffix string) string {
	return "/api/v1/wrapped/sessions/" + url.PathEscape(id) + suffix
}
