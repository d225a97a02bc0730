package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
)

func TestJWTRoundTrip(t *testing.T) {
	claims := NewClaims(42, "a@b.io", TokenTypeAccess, time.Hour)
	tok, err := GenerateJWT(claims, "secret")
	require.NoError(t, err)

	got, err := ValidateJWT(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(42), got.UserID)
	require.Equal(t, "a@b.io", got.Email)
	require.Equal(t, TokenTypeAccess, got.Type)
	require.Equal(t, claims.ID, got.ID)
}

func TestJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	tok, err := GenerateJWT(NewClaims(1, "", TokenTypeRefresh, time.Hour), "secret")
	require.NoError(t, err)
	_, err = ValidateJWT(tok, "other")
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWT(NewClaims(1, "", TokenTypeAccess, -time.Minute), "secret")
	require.NoError(t, err)
	_, err = ValidateJWT(expired, "secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIDsDiffer(t *testing.T) {
	a := NewClaims(1, "", TokenTypeAccess, time.Hour)
	b := NewClaims(1, "", TokenTypeAccess, time.Hour)
	require.NotEqual(t, a.ID, b.ID)
}

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	Rating int    `json:"rating" validate:"gte=0,lte=5"`
}

func TestValidateStructReportsJSONField(t *testing.T) {
	err := ValidateStruct(sample{Name: "ok", Rating: 9})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Equal(t, "rating", apperr.FieldOf(err))
	require.Contains(t, err.Error(), "rating must be at most 5")

	require.NoError(t, ValidateStruct(sample{Name: "ok", Rating: 5}))
}

func TestRespondWithAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Auth("op"), http.StatusUnauthorized, "op: no authenticated user"},
		{apperr.Validation("op", "hotness", "too hot"), http.StatusBadRequest, "op: invalid value (hotness): too hot"},
		{apperr.Generation("op", nil), http.StatusBadGateway, "op: generation failed"},
		{apperr.Storage("op", http.ErrHandlerTimeout), http.StatusInternalServerError, "Internal server error"},
		{apperr.NotFound("op"), http.StatusNotFound, "op: not found"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		RespondWithAppError(rec, c.err)
		require.Equal(t, c.status, rec.Code)

		var body Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.False(t, body.Success)
		require.Equal(t, c.msg, body.Error)
	}
}
