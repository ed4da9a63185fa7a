package filenode

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// Options control classification for a Tree.
type Options struct {
	// SniffLength is the number of leading bytes inspected by the content
	// fallback. Zero or negative values use DefaultSniffLength.
	SniffLength int
	// MimeTypes adds or overrides extension to MIME type mappings.
	MimeTypes map[string]string
}

// Tree classifies paths and constructs the matching entries. A Tree holds no
// mutable state after configuration and may be shared between goroutines.
type Tree struct {
	fs          FileSystem
	mime        MimeResolver
	sniffLength int
	logger      *slog.Logger
}

// NewTree constructs a Tree backed by the OS filesystem.
func NewTree(opts Options, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}

	sniff := opts.SniffLength
	if sniff <= 0 {
		sniff = DefaultSniffLength
	}

	return &Tree{
		fs:          OSFileSystem{},
		mime:        NewExtensionTable(opts.MimeTypes),
		sniffLength: sniff,
		logger:      logger,
	}
}

// SetFileSystem overrides the filesystem implementation used for file access.
func (t *Tree) SetFileSystem(fsys FileSystem) {
	if fsys == nil {
		t.fs = OSFileSystem{}
		return
	}
	t.fs = fsys
}

// SetMimeResolver overrides the extension lookup used by the MIME check.
func (t *Tree) SetMimeResolver(r MimeResolver) {
	if r == nil {
		t.mime = NewExtensionTable(nil)
		return
	}
	t.mime = r
}

// FileSystem returns the filesystem the tree reads from.
func (t *Tree) FileSystem() FileSystem {
	return t.fs
}

func (t *Tree) loggerOrDefault() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

// File returns a generic entry for path without inspecting the filesystem.
func (t *Tree) File(path string) *File {
	return &File{name: filepath.Base(path), path: path, tree: t}
}

// TextFile returns a text entry for path, or an *InvalidEntryError if path is
// not a regular file that classifies as text.
func (t *Tree) TextFile(path string) (*TextFile, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return nil, &InvalidEntryError{Path: path, Want: KindText, Err: err}
	}
	if !info.Mode().IsRegular() || !t.isTextFile(path) {
		return nil, &InvalidEntryError{Path: path, Want: KindText}
	}
	return &TextFile{File: *t.File(path)}, nil
}

// Directory returns a directory entry for path, or an *InvalidEntryError if
// path does not exist or is not a directory.
func (t *Tree) Directory(path string) (*Directory, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return nil, &InvalidEntryError{Path: path, Want: KindDirectory, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidEntryError{Path: path, Want: KindDirectory}
	}
	return &Directory{File: *t.File(path)}, nil
}

// Classify returns the variant path would be built as.
func (t *Tree) Classify(path string) (Kind, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}
	kind, ok := t.kindOf(path, info)
	if !ok {
		return 0, fmt.Errorf("classify %s: %w", path, ErrUnsupported)
	}
	return kind, nil
}

// Entry classifies path and constructs the matching variant.
func (t *Tree) Entry(path string) (Entry, error) {
	kind, err := t.Classify(path)
	if err != nil {
		return nil, err
	}
	return t.newEntry(path, kind), nil
}

func (t *Tree) kindOf(path string, info fs.FileInfo) (Kind, bool) {
	switch {
	case info.IsDir():
		return KindDirectory, true
	case info.Mode().IsRegular():
		if t.isTextFile(path) {
			return KindText, true
		}
		return KindFile, true
	default:
		return 0, false
	}
}

func (t *Tree) newEntry(path string, kind Kind) Entry {
	base := t.File(path)
	switch kind {
	case KindDirectory:
		return &Directory{File: *base}
	case KindText:
		return &TextFile{File: *base}
	default:
		return base
	}
}

// childEntry stats the listed child of dir and builds its entry. Entries that
// cannot be stat'ed or are neither directories nor regular files are skipped.
func (t *Tree) childEntry(dir string, dirent fs.DirEntry) (Entry, bool) {
	path := filepath.Join(dir, dirent.Name())
	info, err := t.fs.Stat(path)
	if err != nil {
		t.loggerOrDefault().Debug("Skipping entry", "path", path, "error", err)
		return nil, false
	}
	kind, ok := t.kindOf(path, info)
	if !ok {
		t.loggerOrDefault().Debug("Skipping entry", "path", path, "mode", info.Mode().String())
		return nil, false
	}
	entry := t.newEntry(path, kind)
	if dirent.Type()&fs.ModeSymlink != 0 {
		setLink(entry)
	}
	return entry, true
}

// OpenDirectory builds a Directory on the OS filesystem with default options.
func OpenDirectory(path string) (*Directory, error) {
	return NewTree(Options{}, nil).Directory(path)
}

// IsText classifies path on the OS filesystem with default options.
func IsText(path string) bool {
	return NewTree(Options{}, nil).IsText(path)
}

func setLink(entry Entry) {
	switch e := entry.(type) {
	case *File:
		e.link = true
	case *TextFile:
		e.link = true
	case *Directory:
		e.link = true
	}
}
