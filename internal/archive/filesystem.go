package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mealplan-go/internal/planner"
)

// FilesystemArchive stores snapshots as files:
//
//	<root>/
//	  <profileID>/
//	    <name>.snapshot
//	    <name>.version
type FilesystemArchive struct {
	name string
	root string
}

func NewFilesystemArchive(name, root string) (*FilesystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &FilesystemArchive{name: name, root: root}, nil
}

func (a *FilesystemArchive) path(profileID, name, ext string) string {
	return filepath.Join(a.root, profileID, name+ext)
}

// PutSnapshot writes the snapshot atomically, then its version. A reader
// never sees a partially written snapshot.
func (a *FilesystemArchive) PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error {
	if err := os.MkdirAll(filepath.Join(a.root, profileID), 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := writeAtomic(a.path(profileID, name, ".snapshot"), r, size); err != nil {
		return err
	}
	versionData := strconv.FormatInt(version, 10)
	return writeAtomic(a.path(profileID, name, ".version"), strings.NewReader(versionData), int64(len(versionData)))
}

func (a *FilesystemArchive) GetSnapshot(profileID string, name string, w io.Writer) error {
	f, err := os.Open(a.path(profileID, name, ".snapshot"))
	if err != nil {
		if os.IsNotExist(err) {
			return notFound(profileID, name)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns 0 if no version file exists.
func (a *FilesystemArchive) GetSnapshotVersion(profileID string, name string) (int64, error) {
	data, err := os.ReadFile(a.path(profileID, name, ".version"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}
	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

func (a *FilesystemArchive) ValidateSetup() error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("archive root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root is not a directory: %s", a.root)
	}
	probe, err := os.CreateTemp(a.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("archive root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// writeAtomic copies r to a temp file next to destPath and renames it into
// place once exactly size bytes were written.
func writeAtomic(destPath string, r io.Reader, size int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

func (a *FilesystemArchive) Name() string { return a.name }

var _ planner.Archive = (*FilesystemArchive)(nil)
