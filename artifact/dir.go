package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DirStore is a filesystem ArtifactStore rooted at a directory.
//
// Layout: <root>/<sessionID>/<artifactID>
type DirStore struct {
	root string
	perm fs.FileMode
	mu   sync.Mutex
}

// NewDirStore returns a store writing below root. The directory is created
// lazily on first Save.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root, perm: 0o644}
}

// Root returns the store's root directory.
func (d *DirStore) Root() string { return d.root }

// Path returns the file path an artifact is stored at.
func (d *DirStore) Path(sessionID, artifactID string) string {
	return filepath.Join(d.root, sessionID, artifactID)
}

// Save writes the artifact atomically (temp file + rename).
func (d *DirStore) Save(sessionID, artifactID string, data []byte) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	if err := validateID(artifactID); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Join(d.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+artifactID+".*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Chmod(d.perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, artifactID))
}

// Get reads an artifact or returns ErrNotFound.
func (d *DirStore) Get(sessionID, artifactID string) ([]byte, error) {
	if validateID(sessionID) != nil || validateID(artifactID) != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(d.Path(sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted artifact ids for the session. Temp files are skipped.
func (d *DirStore) List(sessionID string) ([]string, error) {
	if validateID(sessionID) != nil {
		return []string{}, nil
	}
	entries, err := os.ReadDir(filepath.Join(d.root, sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes an artifact or returns ErrNotFound.
func (d *DirStore) Delete(sessionID, artifactID string) error {
	if validateID(sessionID) != nil || validateID(artifactID) != nil {
		return ErrNotFound
	}
	err := os.Remove(d.Path(sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
