package testutil

import (
	"mealplan-go/internal/encryption"
	"mealplan-go/internal/planner"
)

// NewTestEncryptor returns a reversible, keyless encryptor for tests.
func NewTestEncryptor() planner.Encryptor {
	return encryption.NewTestEncryptor()
}
