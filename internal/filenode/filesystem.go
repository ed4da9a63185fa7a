package filenode

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileSystem abstracts the read-only filesystem primitives the object model
// needs, so tests and sandboxes can provide alternative implementations.
type FileSystem interface {
	Open(name string) (fs.File, error)
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFileSystem implements FileSystem using the local OS filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// AferoFileSystem adapts an afero.Fs to FileSystem.
type AferoFileSystem struct {
	Fs afero.Fs
}

// NewAferoFileSystem wraps the provided afero filesystem.
func NewAferoFileSystem(afs afero.Fs) AferoFileSystem {
	return AferoFileSystem{Fs: afs}
}

// NewReadOnlyFileSystem exposes root as a read-only view; paths handed to the
// returned FileSystem are interpreted relative to root.
func NewReadOnlyFileSystem(root string) AferoFileSystem {
	base := afero.NewBasePathFs(afero.NewOsFs(), filepath.Clean(root))
	return AferoFileSystem{Fs: afero.NewReadOnlyFs(base)}
}

func (a AferoFileSystem) Open(name string) (fs.File, error) {
	return a.Fs.Open(name)
}

func (a AferoFileSystem) Stat(name string) (fs.FileInfo, error) {
	return a.Fs.Stat(name)
}

func (a AferoFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.Fs, name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}
