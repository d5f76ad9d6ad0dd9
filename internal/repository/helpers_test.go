package repository

import (
	"testing"

	"github.com/google/uuid"
)

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}
