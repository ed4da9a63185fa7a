package catalog

import (
	"sort"

	"github.com/leafo/filenode/internal/filenode"
)

// CollectPaths walks root with tree and returns the slash-separated relative
// paths of every entry below it, skipping ignored directories. The root itself
// is not included.
func CollectPaths(tree *filenode.Tree, root string, ignoreDirs []string) ([]string, error) {
	c := &Catalog{tree: tree, root: root, opts: Options{IgnoreDirs: ignoreDirs}}
	return c.collectPaths()
}

func (c *Catalog) collectPaths() ([]string, error) {
	dir, err := c.tree.Directory(c.root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = dir.Walk(func(entry filenode.Entry, err error) error {
		if err != nil {
			c.loggerOrDefault().Warn("Skipping unreadable directory", "path", entry.Path(), "error", err)
			return nil
		}
		if entry.Path() == dir.Path() {
			return nil
		}
		rel := c.relativePath(entry.Path())
		if c.isIgnored(rel) {
			if entry.Kind() == filenode.KindDirectory {
				return filenode.SkipDir
			}
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
