package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"mealplan-go/internal/planner"
)

// MemoryArchive keeps snapshots in memory. It is safe for concurrent use.
type MemoryArchive struct {
	name     string
	mu       sync.RWMutex
	data     map[string][]byte // "profileID/name" -> snapshot
	versions map[string]int64  // "profileID/name" -> version
}

func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{
		name:     name,
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func snapshotKey(profileID, name string) string {
	return profileID + "/" + name
}

func (m *MemoryArchive) PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := snapshotKey(profileID, name)
	m.data[key] = data
	m.versions[key] = version
	return nil
}

func (m *MemoryArchive) GetSnapshot(profileID string, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[snapshotKey(profileID, name)]
	if !ok {
		return notFound(profileID, name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryArchive) GetSnapshotVersion(profileID string, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[snapshotKey(profileID, name)], nil
}

func (m *MemoryArchive) ValidateSetup() error { return nil }

func (m *MemoryArchive) Name() string { return m.name }

var _ planner.Archive = (*MemoryArchive)(nil)
