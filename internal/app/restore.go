package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mealplan-go/internal/archive"
	"mealplan-go/internal/config"
	"mealplan-go/internal/encryption"
	"mealplan-go/internal/planner"
)

// These run without opening the local store, so they work while the store is
// missing or behind the archive.

// SetupEncryption generates the snapshot key pair protected by passphrase.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	return enc.Setup(passphrase)
}

// CheckArchive verifies that the configured archive is reachable and writable.
func CheckArchive(cfg *config.Config) error {
	arch, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if arch == nil {
		return errors.New("no archive configured")
	}
	return arch.ValidateSetup()
}

// Restore fetches the latest snapshot for the profile, decrypts it with
// passphrase and writes it to destPath. destPath must not exist.
// It returns the restored snapshot version.
func Restore(cfg *config.Config, passphrase, destPath string) (int64, error) {
	arch, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	if arch == nil {
		return 0, errors.New("no archive configured")
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	return restoreSnapshot(arch, enc, cfg.ProfileID, passphrase, destPath)
}

func restoreSnapshot(arch planner.Archive, enc planner.Encryptor, profileID, passphrase, destPath string) (int64, error) {
	version, err := arch.GetSnapshotVersion(profileID, SnapshotName)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("snapshot for profile %s: %w", profileID, planner.ErrNotFound)
	}

	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", destPath, err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(arch.GetSnapshot(profileID, SnapshotName, pw))
	}()

	err = dc.Decrypt(pr, out)
	pr.CloseWithError(err)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("restoring snapshot: %w", err)
	}
	return version, nil
}
