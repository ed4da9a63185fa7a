package filenode

import (
	"errors"
	"fmt"
	"io/fs"
)

// SkipDir may be returned from a WalkFunc. On a directory it skips that
// directory's contents; on any other entry it skips the remaining entries of
// the containing directory.
var SkipDir = fs.SkipDir

// WalkFunc is called for every entry visited by Walk. err is non-nil when a
// directory could not be listed, in which case entry is that directory.
type WalkFunc func(entry Entry, err error) error

// Entries lists and classifies the immediate children of the directory.
// Order follows the underlying filesystem. Children that are neither
// directories nor regular files are left out.
func (d *Directory) Entries() ([]Entry, error) {
	tree := d.owner()

	dirents, err := tree.fs.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", d.path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, dirent := range dirents {
		child, ok := tree.childEntry(d.path, dirent)
		if !ok {
			continue
		}
		entries = append(entries, child)
	}
	return entries, nil
}

// Find returns the immediate child with exactly the given name. Only the
// matching child is classified. A missing name is reported by ok == false
// with a nil error.
func (d *Directory) Find(name string) (entry Entry, ok bool, err error) {
	tree := d.owner()

	dirents, err := tree.fs.ReadDir(d.path)
	if err != nil {
		return nil, false, fmt.Errorf("list directory %s: %w", d.path, err)
	}

	for _, dirent := range dirents {
		if dirent.Name() != name {
			continue
		}
		if child, ok := tree.childEntry(d.path, dirent); ok {
			return child, true, nil
		}
	}
	return nil, false, nil
}

// Walk visits the directory and everything below it depth-first, parents
// before children. Each directory is listed with Entries at the time it is
// reached. A directory reached through a symbolic link is visited but not
// descended into.
func (d *Directory) Walk(fn WalkFunc) error {
	err := callWalkFunc(fn, d, nil)
	if err == nil {
		err = d.walkChildren(fn)
	}
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func (d *Directory) walkChildren(fn WalkFunc) error {
	entries, err := d.Entries()
	if err != nil {
		if werr := callWalkFunc(fn, d, err); werr != nil && !errors.Is(werr, SkipDir) {
			return werr
		}
		return nil
	}

	for _, entry := range entries {
		err := callWalkFunc(fn, entry, nil)
		if err == nil {
			if sub, ok := entry.(*Directory); ok && !sub.link {
				err = sub.walkChildren(fn)
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, SkipDir) {
			if entry.Kind() == KindDirectory {
				continue
			}
			return nil
		}
		return err
	}
	return nil
}

func callWalkFunc(fn WalkFunc, entry Entry, err error) (cbErr error) {
	defer func() {
		if r := recover(); r != nil {
			cbErr = fmt.Errorf("walk callback panicked at %s: %v", entry.Path(), r)
		}
	}()
	return fn(entry, err)
}
