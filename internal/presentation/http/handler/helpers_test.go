package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/inventario/pkg/apperror"
)

func TestParseDateRange(t *testing.T) {
	r, err := parseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)

	assert.True(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, r.Contains(time.Date(2024, 3, 31, 23, 59, 0, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, time.Local)))
}

func TestParseDateRange_SameDay(t *testing.T) {
	r, err := parseDateRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)))
}

func TestParseDateRange_OpenEnded(t *testing.T) {
	r, err := parseDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, r.From)
	assert.Nil(t, r.To)
}

func TestParseDateRange_Invalid(t *testing.T) {
	for _, tc := range []struct{ start, end string }{
		{"03/01/2024", ""},
		{"", "2024-13-01"},
		{"2024-03-02", "2024-03-01"},
	} {
		_, err := parseDateRange(tc.start, tc.end)
		require.Error(t, err, "%s..%s", tc.start, tc.end)
		assert.Equal(t, 400, apperror.GetAppError(err).Code)
	}
}
