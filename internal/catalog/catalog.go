package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/leafo/filenode/internal/filenode"
)

// Options control chunking, path selection and sync targets for a Catalog.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	IgnoreDirs   []string
	Meilisearch  MeilisearchConfig
	Shell        ShellTargetConfig
}

// Catalog records a walk of a directory tree in SQLite. The filenode object
// model never reads it back; it is an export for search and inspection.
type Catalog struct {
	db      *sql.DB
	tree    *filenode.Tree
	root    string
	opts    Options
	logger  *slog.Logger
	targets []ChunkSyncTarget
}

// NewCatalog constructs a Catalog over root using the provided database and
// tree. A nil tree uses an OS-backed tree with default options.
func NewCatalog(db *sql.DB, tree *filenode.Tree, root string, opts Options, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if tree == nil {
		tree = filenode.NewTree(filenode.Options{}, logger)
	}

	c := &Catalog{
		db:     db,
		tree:   tree,
		root:   root,
		opts:   opts,
		logger: logger,
	}
	c.initMeilisearch()
	c.RegisterSyncTarget(newShellTarget(&opts.Shell))
	return c
}

// RegisterSyncTarget adds a consumer for change sets. Nil targets are ignored.
func (c *Catalog) RegisterSyncTarget(target ChunkSyncTarget) {
	if target == nil {
		return
	}
	c.targets = append(c.targets, target)
}

func (c *Catalog) dispatchChunkChanges(ctx context.Context, changes ChunkChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}
	var errs []error
	for _, target := range c.targets {
		if err := target.ApplyChunkChanges(ctx, changes); err != nil {
			c.loggerOrDefault().Error("Sync target failed", "target", fmt.Sprintf("%T", target), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) chunkOptions() ChunkOptions {
	return ChunkOptions{ChunkSize: c.opts.ChunkSize, ChunkOverlap: c.opts.ChunkOverlap}
}

func (c *Catalog) isIgnored(relPath string) bool {
	if len(c.opts.IgnoreDirs) == 0 {
		return false
	}
	relPath = strings.TrimLeft(filepath.ToSlash(relPath), "/")
	for _, dir := range c.opts.IgnoreDirs {
		d := strings.Trim(strings.TrimSpace(dir), "/")
		if d == "" {
			continue
		}
		if relPath == d || strings.HasPrefix(relPath, d+"/") {
			return true
		}
	}
	return false
}

func (c *Catalog) absPath(relPath string) string {
	return filepath.Join(c.root, filepath.FromSlash(relPath))
}

func (c *Catalog) relativePath(path string) string {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// SyncPath reconciles a single relative path with the catalog. Paths that no
// longer exist, are ignored or are not cataloguable are removed.
func (c *Catalog) SyncPath(ctx context.Context, relPath string) (chunkSyncStats, ChunkChangeSet, error) {
	return c.syncPath(ctx, uuid.NewString(), relPath)
}

func (c *Catalog) syncPath(ctx context.Context, scanID, relPath string) (chunkSyncStats, ChunkChangeSet, error) {
	if c.isIgnored(relPath) {
		return c.removePath(ctx, relPath, "ignored")
	}

	entry, err := c.tree.Entry(c.absPath(relPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, filenode.ErrUnsupported) {
			return c.removePath(ctx, relPath, "missing")
		}
		return chunkSyncStats{}, ChunkChangeSet{}, err
	}

	var (
		chunks []Chunk
		hash   string
	)
	if text, ok := entry.(*filenode.TextFile); ok {
		content, err := text.Content()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return c.removePath(ctx, relPath, "missing")
			}
			return chunkSyncStats{}, ChunkChangeSet{}, err
		}
		chunks, err = ChunkText(content, relPath, c.chunkOptions())
		if err != nil {
			return chunkSyncStats{}, ChunkChangeSet{}, err
		}
		hash = contentHash(content)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return chunkSyncStats{}, ChunkChangeSet{}, fmt.Errorf("begin transaction: %w", err)
	}
	var changes ChunkChangeSet
	stats, err := c.syncEntryTx(ctx, tx, scanID, relPath, entry, hash, chunks, &changes)
	if err != nil {
		tx.Rollback()
		return chunkSyncStats{}, ChunkChangeSet{}, err
	}
	if err := tx.Commit(); err != nil {
		return chunkSyncStats{}, ChunkChangeSet{}, fmt.Errorf("commit transaction: %w", err)
	}

	c.loggerOrDefault().Debug("Synced entry", "path", relPath, "kind", entry.Kind().String(), "chunks", len(chunks), "inserted", stats.inserted, "updated", stats.updated, "deleted", stats.deleted)
	return stats, changes, nil
}

func (c *Catalog) syncEntryTx(ctx context.Context, tx *sql.Tx, scanID, relPath string, entry filenode.Entry, hash string, chunks []Chunk, changes *ChunkChangeSet) (chunkSyncStats, error) {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO entries (path, name, kind, content_hash, scan_id, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(path) DO UPDATE SET
    name = excluded.name,
    kind = excluded.kind,
    content_hash = excluded.content_hash,
    scan_id = excluded.scan_id,
    updated_at = CURRENT_TIMESTAMP
`, relPath, entry.Name(), entry.Kind().String(), hash, scanID); err != nil {
		return chunkSyncStats{}, fmt.Errorf("upsert entry %s: %w", relPath, err)
	}

	stats, err := c.syncFileChunks(ctx, tx, relPath, chunks, changes)
	if err != nil {
		return chunkSyncStats{}, err
	}
	stats.present = true
	stats.text = entry.Kind() == filenode.KindText
	return stats, nil
}

func (c *Catalog) removePath(ctx context.Context, relPath, reason string) (chunkSyncStats, ChunkChangeSet, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return chunkSyncStats{}, ChunkChangeSet{}, fmt.Errorf("begin transaction: %w", err)
	}
	var changes ChunkChangeSet
	deleted, err := c.deleteFileRecords(ctx, tx, relPath, &changes)
	if err != nil {
		tx.Rollback()
		return chunkSyncStats{}, ChunkChangeSet{}, err
	}
	if err := tx.Commit(); err != nil {
		return chunkSyncStats{}, ChunkChangeSet{}, fmt.Errorf("commit transaction: %w", err)
	}
	if len(changes.RemovedEntries) > 0 {
		c.loggerOrDefault().Info("Removed entry from catalog", "path", relPath, "chunks", deleted, "reason", reason)
	}
	return chunkSyncStats{deleted: deleted}, changes, nil
}

func (c *Catalog) loggerOrDefault() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
