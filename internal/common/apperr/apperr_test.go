package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list entries: %w", Storage("dating.List", cause))

	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrAuth)
	require.Equal(t, ErrStorage, KindOf(err))
}

func TestValidationCarriesField(t *testing.T) {
	err := Validation("dating.Validate", "rating", "must be between 0 and 5")

	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "rating", FieldOf(err))
	require.Equal(t, "dating.Validate: invalid value (rating): must be between 0 and 5", err.Error())
}

func TestKindOfUnknown(t *testing.T) {
	require.Nil(t, KindOf(errors.New("plain")))
	require.Equal(t, "", FieldOf(errors.New("plain")))
}

func TestAuthWithoutCause(t *testing.T) {
	err := Auth("stats.Get")
	require.ErrorIs(t, err, ErrAuth)
	require.Equal(t, "stats.Get: no authenticated user", err.Error())
}
