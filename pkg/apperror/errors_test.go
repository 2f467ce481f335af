package apperror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithDetail_StillMatchesSentinel(t *testing.T) {
	err := ErrInsufficientStock.WithDetail("items[0].quantity", "only 2 left of Widget")

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, err.Errors, 1)
	assert.Empty(t, ErrInsufficientStock.Errors, "sentinel must not be mutated")
}

func TestGetAppError(t *testing.T) {
	t.Run("wrapped app error", func(t *testing.T) {
		err := errors.Wrap(ErrProductNotFound, "lookup")
		appErr := GetAppError(err)
		assert.Equal(t, http.StatusNotFound, appErr.Code)
		assert.Equal(t, "Product not found", appErr.Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		appErr := GetAppError(errors.New("disk full"))
		assert.Equal(t, http.StatusInternalServerError, appErr.Code)
		assert.Equal(t, "disk full", appErr.Message)
	})
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(errors.Wrap(ErrEmptySale, "record")))
	assert.False(t, IsAppError(errors.New("boom")))
}
