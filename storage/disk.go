package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore keeps files under Root/<category>/<uuid><ext>. References are
// "/storage/<category>/<file>" paths, the same shape the upload endpoints
// hand back to clients, so a full URL echoed back by a client resolves too.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Root: root}, nil
}

func (s *DiskStore) Store(data []byte, category string, originalName string) (string, error) {
	if category == "" {
		category = "misc"
	}
	dir := filepath.Join(s.Root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return "/storage/" + category + "/" + name, nil
}

func (s *DiskStore) Resolve(reference string) (string, error) {
	// pre-resolved absolute paths are accepted as-is when readable
	if filepath.IsAbs(reference) && !strings.HasPrefix(reference, "/storage/") {
		if fileExists(reference) {
			return reference, nil
		}
		return "", ErrNotFound
	}

	path := reference
	if u, err := url.Parse(reference); err == nil && u.Path != "" {
		path = u.Path
	}
	rel := strings.TrimPrefix(path, "/storage/")
	rel = strings.TrimPrefix(rel, "storage/")
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", ErrNotFound
	}

	abs := filepath.Join(s.Root, filepath.FromSlash(rel))
	if !strings.HasPrefix(abs, filepath.Clean(s.Root)+string(os.PathSeparator)) {
		return "", ErrNotFound
	}
	if !fileExists(abs) {
		return "", ErrNotFound
	}
	return abs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
