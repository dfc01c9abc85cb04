// Package archive stores versioned database snapshots outside the local
// data directory.
package archive

import (
	"fmt"

	"mealplan-go/internal/config"
	"mealplan-go/internal/planner"
)

// NewArchiveFromConfig returns the archive selected by cfg.Type, or nil when
// archiving is disabled.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (planner.Archive, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryArchive(cfg.Name), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_root to be set")
		}
		a, err := NewFilesystemArchive(cfg.Name, cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "s3":
		a, err := NewS3Archive(cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

func notFound(profileID, name string) error {
	return fmt.Errorf("snapshot %q for profile %s: %w", name, profileID, planner.ErrNotFound)
}
