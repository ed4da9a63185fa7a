// Package filenode models a local filesystem tree as generic files, text files
// and directories.
//
// Entries are cheap values: they hold a path and the Tree that built them, never
// an open handle, and every listing or content read goes back to the
// filesystem at call time.
package filenode

import (
	"fmt"
	"io"
)

// Kind tags the closed set of entry variants.
type Kind int

const (
	KindFile Kind = iota
	KindText
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindText:
		return "text"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "file":
		return KindFile, nil
	case "text":
		return KindText, nil
	case "directory":
		return KindDirectory, nil
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

func (k Kind) noun() string {
	switch k {
	case KindText:
		return "text file"
	case KindDirectory:
		return "directory"
	default:
		return "file"
	}
}

// Entry is implemented by *File, *TextFile and *Directory only.
type Entry interface {
	Name() string
	Path() string
	Kind() Kind
	String() string
	Equal(other Entry) (bool, error)

	isEntry()
}

// Equal compares a and b using the equality rule of a's variant.
func Equal(a, b Entry) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	return a.Equal(b)
}

// File is a generic filesystem entry identified by its path.
type File struct {
	name string
	path string
	tree *Tree
	// link is set when a listing reported the entry as a symbolic link.
	link bool
}

func (f *File) Name() string { return f.name }
func (f *File) Path() string { return f.path }
func (f *File) Kind() Kind   { return KindFile }

func (f *File) String() string {
	return "Generic File: " + f.name
}

func (f *File) GoString() string {
	return fmt.Sprintf("File(name=%q, path=%q)", f.name, f.path)
}

// Equal reports whether other is a File or Directory with the same path.
// A TextFile is never equal to a File, matching (*TextFile).Equal so the
// relation stays symmetric.
func (f *File) Equal(other Entry) (bool, error) {
	if other == nil {
		return false, nil
	}
	if _, ok := other.(*TextFile); ok {
		return false, nil
	}
	return f.path == other.Path(), nil
}

func (*File) isEntry() {}

func (f *File) owner() *Tree {
	if f.tree == nil {
		return NewTree(Options{}, nil)
	}
	return f.tree
}

// TextFile is a regular file that classified as text when it was constructed.
// The classification is not re-checked afterwards.
type TextFile struct {
	File
}

func (t *TextFile) Kind() Kind { return KindText }

func (t *TextFile) String() string {
	return "Text File: " + t.name
}

func (t *TextFile) GoString() string {
	return fmt.Sprintf("TextFile(name=%q, path=%q)", t.name, t.path)
}

// Content reads the whole file. Nothing is cached between calls.
func (t *TextFile) Content() (string, error) {
	f, err := t.owner().fs.Open(t.path)
	if err != nil {
		return "", fmt.Errorf("open text file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read text file %s: %w", t.path, err)
	}
	return string(data), nil
}

// Equal compares by content: two TextFiles at different paths with identical
// contents are equal. Entries of other variants are never equal to a TextFile.
func (t *TextFile) Equal(other Entry) (bool, error) {
	o, ok := other.(*TextFile)
	if !ok || o == nil {
		return false, nil
	}
	mine, err := t.Content()
	if err != nil {
		return false, err
	}
	theirs, err := o.Content()
	if err != nil {
		return false, err
	}
	return mine == theirs, nil
}

// Directory is a directory entry. It keeps no child list; see Entries and Find.
type Directory struct {
	File
}

func (d *Directory) Kind() Kind { return KindDirectory }

func (d *Directory) String() string {
	return "Directory: " + d.name
}

func (d *Directory) GoString() string {
	return fmt.Sprintf("Directory(name=%q, path=%q)", d.name, d.path)
}
