package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// ShortID returns the first eight characters of an id, the form shown in
// tables and receipts.
func ShortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

// ReceiptNo builds a human-readable receipt number for a sale id.
func ReceiptNo(prefix string, id uuid.UUID) string {
	return prefix + "-" + ShortID(id)
}
