package filenode

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryEntries(t *testing.T) {
	root := setupTree(t, map[string]any{
		"sub":   map[string]any{"nested.txt": "deep"},
		"a.txt": "hi",
		"b.bin": []byte{0x00, 0x01},
	})

	dir, err := NewTree(Options{}, nil).Directory(root)
	require.NoError(t, err)

	entries, err := dir.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := entriesByName(entries)

	sub, ok := byName["sub"].(*Directory)
	require.True(t, ok, "expected sub to be a directory, got %T", byName["sub"])
	assert.Equal(t, filepath.Join(root, "sub"), sub.Path())

	text, ok := byName["a.txt"].(*TextFile)
	require.True(t, ok, "expected a.txt to be a text file, got %T", byName["a.txt"])
	content, err := text.Content()
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	generic, ok := byName["b.bin"].(*File)
	require.True(t, ok, "expected b.bin to be a generic file, got %T", byName["b.bin"])
	assert.Equal(t, KindFile, generic.Kind())
}

func TestDirectoryEntriesEmpty(t *testing.T) {
	dir, err := OpenDirectory(t.TempDir())
	require.NoError(t, err)

	entries, err := dir.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDirectoryEntriesSkipsBrokenSymlinks(t *testing.T) {
	root := setupTree(t, map[string]any{"a.txt": "hi"})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	entries, err := dir.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())

	_, found, err := dir.Find("dangling")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDirectoryEntriesSkipsUnsupportedTypes(t *testing.T) {
	root := setupTree(t, map[string]any{"pipe": "placeholder"})

	tree := NewTree(Options{}, nil)
	dir, err := tree.Directory(root)
	require.NoError(t, err)

	tree.SetFileSystem(fakeModeFS{mode: fs.ModeNamedPipe})
	entries, err := dir.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDirectoryEntriesListingFailure(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vanishing")
	require.NoError(t, os.Mkdir(root, 0o755))

	dir, err := OpenDirectory(root)
	require.NoError(t, err)
	require.NoError(t, os.Remove(root))

	entries, err := dir.Entries()
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, _, err = dir.Find("anything")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDirectoryFind(t *testing.T) {
	root := setupTree(t, map[string]any{
		"sub":   map[string]any{},
		"a.txt": "hi",
		"b.bin": []byte{0x00, 0x01},
	})
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	t.Run("missing name is not an error", func(t *testing.T) {
		entry, found, err := dir.Find("nope.txt")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, entry)
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		_, found, err := dir.Find("A.TXT")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("match agrees with the full listing", func(t *testing.T) {
		listing, err := dir.Entries()
		require.NoError(t, err)
		byName := entriesByName(listing)

		for _, name := range []string{"sub", "a.txt", "b.bin"} {
			entry, found, err := dir.Find(name)
			require.NoError(t, err)
			require.True(t, found, name)
			assert.Equal(t, byName[name].Kind(), entry.Kind())

			eq, err := entry.Equal(byName[name])
			require.NoError(t, err)
			assert.True(t, eq, name)
		}
	})
}

// countingFS counts Open calls so tests can observe which entries were read.
type countingFS struct {
	OSFileSystem
	opened map[string]int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opened[filepath.Base(name)]++
	return c.OSFileSystem.Open(name)
}

func TestDirectoryFindClassifiesOnlyTheMatch(t *testing.T) {
	root := setupTree(t, map[string]any{
		"first.qqzx":  "a",
		"second.qqzx": "b",
		"third.qqzx":  "c",
	})

	counter := &countingFS{opened: map[string]int{}}
	tree := NewTree(Options{}, nil)
	tree.SetFileSystem(counter)

	dir, err := tree.Directory(root)
	require.NoError(t, err)

	entry, found, err := dir.Find("second.qqzx")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, KindText, entry.Kind())
	assert.Equal(t, map[string]int{"second.qqzx": 1}, counter.opened)
}

func TestDirectoryWalk(t *testing.T) {
	root := setupTree(t, map[string]any{
		"project": map[string]any{
			"src": map[string]any{
				"main.go": "package main",
			},
			"vendor": map[string]any{
				"lib.go": "package lib",
			},
			"README.md": "# Project",
			"logo.png":  []byte{0x89, 'P', 'N', 'G', 0},
		},
	})
	tree := NewTree(Options{}, nil)
	dir, err := tree.Directory(filepath.Join(root, "project"))
	require.NoError(t, err)

	t.Run("pre-order", func(t *testing.T) {
		var visited []string
		err := dir.Walk(func(entry Entry, err error) error {
			require.NoError(t, err)
			rel, relErr := filepath.Rel(root, entry.Path())
			require.NoError(t, relErr)
			visited = append(visited, filepath.ToSlash(rel))
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, "project", visited[0])
		assert.ElementsMatch(t, []string{
			"project",
			"project/src",
			"project/src/main.go",
			"project/vendor",
			"project/vendor/lib.go",
			"project/README.md",
			"project/logo.png",
		}, visited)
		assert.Less(t, indexOf(visited, "project/src"), indexOf(visited, "project/src/main.go"))
		assert.Less(t, indexOf(visited, "project/vendor"), indexOf(visited, "project/vendor/lib.go"))
	})

	t.Run("skip directory", func(t *testing.T) {
		var visited []string
		err := dir.Walk(func(entry Entry, err error) error {
			if entry.Name() == "vendor" {
				return SkipDir
			}
			visited = append(visited, entry.Name())
			return nil
		})
		require.NoError(t, err)
		assert.NotContains(t, visited, "lib.go")
		assert.Contains(t, visited, "main.go")
	})

	t.Run("skip from a file ends its directory", func(t *testing.T) {
		var visited []string
		err := dir.Walk(func(entry Entry, err error) error {
			visited = append(visited, entry.Name())
			if entry.Name() == "README.md" {
				return SkipDir
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"project", "README.md"}, visited)
	})

	t.Run("skip root", func(t *testing.T) {
		calls := 0
		err := dir.Walk(func(entry Entry, err error) error {
			calls++
			return SkipDir
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("error stops the walk", func(t *testing.T) {
		stop := errors.New("stop")
		err := dir.Walk(func(entry Entry, err error) error {
			if entry.Kind() == KindText {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		err := dir.Walk(func(entry Entry, err error) error {
			if entry.Name() == "main.go" {
				panic("boom")
			}
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "walk callback panicked")
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestDirectoryWalkDoesNotFollowLinkedDirectories(t *testing.T) {
	root := setupTree(t, map[string]any{"a.txt": "hi"})
	require.NoError(t, os.Symlink(".", filepath.Join(root, "loop")))

	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	entries, err := dir.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindDirectory, entries[1].Kind(), "listing follows the link")

	var visited []string
	err = dir.Walk(func(entry Entry, err error) error {
		require.NoError(t, err)
		rel, relErr := filepath.Rel(root, entry.Path())
		require.NoError(t, relErr)
		visited = append(visited, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".", "a.txt", "loop"}, visited)
}

func TestDirectoryWalkReportsListingErrors(t *testing.T) {
	root := setupTree(t, map[string]any{"gone": map[string]any{}})
	dir, err := OpenDirectory(filepath.Join(root, "gone"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir.Path()))

	var reported error
	err = dir.Walk(func(entry Entry, err error) error {
		if err != nil {
			reported = err
		}
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, reported, fs.ErrNotExist)

	err = dir.Walk(func(entry Entry, err error) error {
		return err
	})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAferoBackedTree(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/data/sub", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/data/a.txt", []byte("hi"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/data/b.bin", []byte{0x00, 0x01}, 0o644))
	require.NoError(t, afero.WriteFile(mem, "/data/sub/c.qqzx", []byte("plain"), 0o644))

	tree := NewTree(Options{}, nil)
	tree.SetFileSystem(NewAferoFileSystem(mem))

	dir, err := tree.Directory("/data")
	require.NoError(t, err)

	entries, err := dir.Entries()
	require.NoError(t, err)
	byName := entriesByName(entries)
	require.Len(t, byName, 3)
	assert.Equal(t, KindDirectory, byName["sub"].Kind())
	assert.Equal(t, KindText, byName["a.txt"].Kind())
	assert.Equal(t, KindFile, byName["b.bin"].Kind())

	nested, found, err := byName["sub"].(*Directory).Find("c.qqzx")
	require.NoError(t, err)
	require.True(t, found)
	content, err := nested.(*TextFile).Content()
	require.NoError(t, err)
	assert.Equal(t, "plain", content)
}

func TestReadOnlyFileSystem(t *testing.T) {
	root := setupTree(t, map[string]any{
		"docs": map[string]any{"guide.md": "# Guide"},
	})

	tree := NewTree(Options{}, nil)
	tree.SetFileSystem(NewReadOnlyFileSystem(root))

	dir, err := tree.Directory("/docs")
	require.NoError(t, err)

	entry, found, err := dir.Find("guide.md")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, KindText, entry.Kind())

	_, err = tree.Directory("/../outside")
	assert.Error(t, err)
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
