package encryption

import (
	"fmt"

	"mealplan-go/internal/config"
	"mealplan-go/internal/planner"
)

// NewEncryptorFromConfig returns the Encryptor selected by cfg.Type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (planner.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption needs public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return NoneEncryptor{}, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
