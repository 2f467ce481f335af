package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	assert.Equal(t, "3F2A9C1E", ShortID(id))
	assert.Equal(t, "SALE-3F2A9C1E", ReceiptNo("SALE", id))
}

func TestParseUUID_TrimsSpace(t *testing.T) {
	id := NewUUID()
	parsed, err := ParseUUID("  " + id.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUUID("not-an-id")
	assert.Error(t, err)
}
