package testutil

import (
	"mealplan-go/internal/archive"
)

// NewTestArchive returns an empty in-memory archive.
func NewTestArchive() *archive.MemoryArchive {
	return archive.NewMemoryArchive("test-archive")
}
