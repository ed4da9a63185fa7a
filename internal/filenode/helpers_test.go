package filenode

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to create file %s: %v", path, err)
	}
	return path
}

// createStructure materializes a nested map of names to string contents
// (files) or nested maps (directories) under basePath.
func createStructure(t *testing.T, basePath string, structure map[string]any) {
	t.Helper()
	for name, content := range structure {
		path := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := os.WriteFile(path, []byte(v), 0o644); err != nil {
				t.Fatalf("failed to create file %s: %v", path, err)
			}
		case []byte:
			if err := os.WriteFile(path, v, 0o644); err != nil {
				t.Fatalf("failed to create file %s: %v", path, err)
			}
		case map[string]any:
			if err := os.Mkdir(path, 0o755); err != nil {
				t.Fatalf("failed to create directory %s: %v", path, err)
			}
			createStructure(t, path, v)
		default:
			t.Fatalf("unsupported structure type for %s", name)
		}
	}
}

func setupTree(t *testing.T, structure map[string]any) string {
	t.Helper()
	root := t.TempDir()
	createStructure(t, root, structure)
	return root
}

var errInjected = errors.New("injected failure")

// failingOpenFS stats normally but refuses to open files.
type failingOpenFS struct {
	OSFileSystem
}

func (failingOpenFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: errInjected}
}

func entriesByName(entries []Entry) map[string]Entry {
	byName := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		byName[entry.Name()] = entry
	}
	return byName
}

type fakeInfo struct {
	name string
	mode fs.FileMode
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() any           { return nil }

// fakeModeFS reports every path as having the configured mode.
type fakeModeFS struct {
	OSFileSystem
	mode fs.FileMode
}

func (f fakeModeFS) Stat(name string) (fs.FileInfo, error) {
	return fakeInfo{name: filepath.Base(name), mode: f.mode}, nil
}
