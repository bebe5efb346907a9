// Package filesystem provides the directory reads and index writes used by dirindex.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/dirindex/internal/types"
)

// Service performs file system operations confined to a root directory.
type Service struct {
	rootPath string
}

// New creates a new Service rooted at rootPath.
func New(rootPath string) *Service {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		absPath = filepath.Clean(rootPath)
	}
	return &Service{rootPath: absPath}
}

// ResolvePath resolves a relative path within the root and validates it.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	relativePath = strings.TrimSpace(relativePath)
	if relativePath == "." {
		relativePath = ""
	}
	relativePath = strings.TrimPrefix(relativePath, "/")

	fullPath := filepath.Join(s.rootPath, relativePath)
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}

	if !within(s.rootPath, absPath) {
		return "", fmt.Errorf("path traversal not allowed: %s", relativePath)
	}

	// A symlink under the root may still point outside of it.
	realRoot, err := evalExisting(s.rootPath)
	if err != nil {
		return "", err
	}
	realPath, err := evalExisting(absPath)
	if err != nil {
		return "", err
	}
	if !within(realRoot, realPath) {
		return "", fmt.Errorf("path traversal not allowed: %s resolves outside the root", relativePath)
	}

	return absPath, nil
}

func within(root, path string) bool {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return relPath != ".." && !strings.HasPrefix(relPath, ".."+string(filepath.Separator))
}

// evalExisting resolves symlinks in the longest existing prefix of path and
// appends the missing remainder unchanged.
func evalExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", describeError("resolve", path, err)
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path, nil
	}
	resolvedParent, err := evalExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}

// ListDirectory returns the files and directories directly inside path, in
// the order the operating system enumerates them. Symlinks and special files
// are left out.
func (s *Service) ListDirectory(path string) ([]types.DirectoryEntry, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	dir, err := os.Open(fullPath)
	if err != nil {
		return nil, describeError("open directory", fullPath, err)
	}
	defer dir.Close()

	dirEntries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, describeError("read directory", fullPath, err)
	}

	entries := make([]types.DirectoryEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		switch {
		case entry.IsDir():
			entries = append(entries, types.DirectoryEntry{Name: entry.Name(), Kind: types.KindDirectory})
		case entry.Type().IsRegular():
			entries = append(entries, types.DirectoryEntry{Name: entry.Name(), Kind: types.KindFile})
		}
	}

	return entries, nil
}

// WriteFile replaces the file at path with data. With atomic set, the data
// goes to a temporary file in the same directory which is then renamed over
// the target, so readers never observe a truncated file.
func (s *Service) WriteFile(path string, data []byte, atomic bool) (string, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}

	if !atomic {
		if err := os.WriteFile(fullPath, data, 0o644); err != nil {
			return "", describeError("write file", fullPath, err)
		}
		return fullPath, nil
	}

	if err := writeAtomic(fullPath, data); err != nil {
		return "", describeError("write file", fullPath, err)
	}
	return fullPath, nil
}

// IsDirectory checks if a path is a directory.
func (s *Service) IsDirectory(path string) (bool, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return false, nil
	}

	return info.IsDir(), nil
}

// GetRootPath returns the root path.
func (s *Service) GetRootPath() string {
	return s.rootPath
}

func writeAtomic(fullPath string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// describeError adds context while keeping the fs sentinel errors reachable through errors.Is.
func describeError(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: not found: %s: %w", op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: permission denied: %s: %w", op, path, err)
	default:
		return fmt.Errorf("failed to %s: %s: %w", op, path, err)
	}
}
