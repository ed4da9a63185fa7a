package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type chunkSyncStats struct {
	inserted int
	updated  int
	deleted  int
	present  bool
	text     bool
}

type chunkPosition struct {
	start int
	end   int
}

// SyncSummary captures aggregate details about a synchronization run.
type SyncSummary struct {
	ScanID         string
	EntriesSeen    int
	TextFiles      int
	EntriesRemoved int
	ChunksInserted int
	ChunksUpdated  int
	ChunksDeleted  int
	TotalEntries   int
	TotalChunks    int
}

// Synchronize walks the root directory, records every entry and the chunks of
// every text file, and removes catalog rows for paths that disappeared.
func (c *Catalog) Synchronize(ctx context.Context) (SyncSummary, error) {
	logger := c.loggerOrDefault()
	scanID := uuid.NewString()
	startedAt := time.Now().UTC()

	paths, err := c.collectPaths()
	if err != nil {
		return SyncSummary{}, fmt.Errorf("collect entries: %w", err)
	}
	logger.Info("Collected entries to process", "count", len(paths))

	existing, err := c.loadExistingEntries(ctx)
	if err != nil {
		return SyncSummary{}, err
	}

	summary := SyncSummary{ScanID: scanID, EntriesSeen: len(paths)}

	var existingMu sync.Mutex
	var changesMu sync.Mutex
	var changes ChunkChangeSet
	var inserted, updated, deleted, textFiles atomic.Int64

	workerCount := max(runtime.NumCPU(), 1)

	runBatch := func(paths []string, removeFromExisting bool) error {
		if len(paths) == 0 {
			return nil
		}

		sem := make(chan struct{}, workerCount)
		var wg sync.WaitGroup
		var firstErr error
		var errMu sync.Mutex

		setFirstErr := func(err error) {
			if err == nil {
				return
			}
			errMu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			errMu.Unlock()
		}

		for _, relPath := range paths {
			errMu.Lock()
			if firstErr != nil {
				errMu.Unlock()
				break
			}
			errMu.Unlock()

			if ctxErr := ctx.Err(); ctxErr != nil {
				setFirstErr(ctxErr)
				break
			}

			sem <- struct{}{}
			wg.Add(1)
			go func(rel string) {
				defer wg.Done()
				defer func() { <-sem }()

				stats, delta, syncErr := c.syncPath(ctx, scanID, rel)
				if syncErr != nil {
					setFirstErr(fmt.Errorf("sync entry %s: %w", rel, syncErr))
					return
				}

				inserted.Add(int64(stats.inserted))
				updated.Add(int64(stats.updated))
				deleted.Add(int64(stats.deleted))
				if stats.text {
					textFiles.Add(1)
				}

				changesMu.Lock()
				changes.Merge(delta)
				changesMu.Unlock()

				if removeFromExisting && stats.present {
					existingMu.Lock()
					delete(existing, rel)
					existingMu.Unlock()
				}
			}(relPath)
		}

		wg.Wait()

		errMu.Lock()
		defer errMu.Unlock()
		return firstErr
	}

	if err := runBatch(paths, true); err != nil {
		return SyncSummary{}, err
	}

	existingMu.Lock()
	remaining := make([]string, 0, len(existing))
	for rel := range existing {
		remaining = append(remaining, rel)
	}
	existingMu.Unlock()

	if err := runBatch(remaining, false); err != nil {
		return SyncSummary{}, err
	}

	summary.EntriesRemoved = len(changes.RemovedEntries)
	summary.TextFiles = int(textFiles.Load())
	summary.ChunksInserted = int(inserted.Load())
	summary.ChunksUpdated = int(updated.Load())
	summary.ChunksDeleted = int(deleted.Load())

	if err := c.recordScan(ctx, scanID, startedAt, summary); err != nil {
		return SyncSummary{}, err
	}

	logger.Info("Synchronization complete", "scan_id", scanID, "entries", summary.EntriesSeen, "text_files", summary.TextFiles, "removed_entries", summary.EntriesRemoved, "chunks_inserted", summary.ChunksInserted, "chunks_updated", summary.ChunksUpdated, "chunks_deleted", summary.ChunksDeleted)

	entriesCount, chunksCount, err := c.countStoredStats(ctx)
	if err != nil {
		return SyncSummary{}, err
	}
	summary.TotalEntries = entriesCount
	summary.TotalChunks = chunksCount

	if err := c.dispatchChunkChanges(ctx, changes); err != nil {
		return summary, fmt.Errorf("dispatch changes: %w", err)
	}

	return summary, nil
}

func (c *Catalog) loadExistingEntries(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("load existing entries: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan existing entry: %w", err)
		}
		existing[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing entries: %w", err)
	}

	return existing, nil
}

func (c *Catalog) countStoredStats(ctx context.Context) (int, int, error) {
	var entryCount, chunkCount int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&entryCount); err != nil {
		return 0, 0, fmt.Errorf("count entries: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunkCount); err != nil {
		return 0, 0, fmt.Errorf("count chunks: %w", err)
	}
	return entryCount, chunkCount, nil
}

func (c *Catalog) recordScan(ctx context.Context, scanID string, startedAt time.Time, summary SyncSummary) error {
	if _, err := c.db.ExecContext(ctx, `
INSERT INTO scans (id, root, started_at, finished_at, entries, text_files)
VALUES (?, ?, ?, ?, ?, ?)
`, scanID, c.root, startedAt, time.Now().UTC(), summary.EntriesSeen, summary.TextFiles); err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

func (c *Catalog) syncFileChunks(ctx context.Context, tx *sql.Tx, filePath string, chunks []Chunk, changes *ChunkChangeSet) (chunkSyncStats, error) {
	existing, err := loadExistingChunks(ctx, tx, filePath)
	if err != nil {
		return chunkSyncStats{}, err
	}

	seen := make(map[chunkPosition]struct{}, len(chunks))
	var stats chunkSyncStats

	for _, chunk := range chunks {
		pos := chunkPosition{start: chunk.StartLine, end: chunk.EndLine}
		seen[pos] = struct{}{}

		if hash, ok := existing[pos]; ok {
			if hash == chunk.ContentHash {
				continue
			}
			if _, execErr := tx.ExecContext(ctx, `
UPDATE chunks
SET content = ?, content_hash = ?, updated_at = CURRENT_TIMESTAMP
WHERE file_path = ? AND start_line = ? AND end_line = ?
`, chunk.Content, chunk.ContentHash, chunk.FilePath, chunk.StartLine, chunk.EndLine); execErr != nil {
				return chunkSyncStats{}, fmt.Errorf("update chunk: %w", execErr)
			}
			stats.updated++
			changes.Upserts = append(changes.Upserts, chunk)
			continue
		}

		if _, execErr := tx.ExecContext(ctx, `
INSERT INTO chunks (file_path, start_line, end_line, content, content_hash)
VALUES (?, ?, ?, ?, ?)
`, chunk.FilePath, chunk.StartLine, chunk.EndLine, chunk.Content, chunk.ContentHash); execErr != nil {
			return chunkSyncStats{}, fmt.Errorf("insert chunk: %w", execErr)
		}
		stats.inserted++
		changes.Upserts = append(changes.Upserts, chunk)
	}

	for pos := range existing {
		if _, ok := seen[pos]; ok {
			continue
		}
		if _, execErr := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ? AND start_line = ? AND end_line = ?`, filePath, pos.start, pos.end); execErr != nil {
			return chunkSyncStats{}, fmt.Errorf("delete stale chunk: %w", execErr)
		}
		stats.deleted++
		changes.Deletions = append(changes.Deletions, ChunkIdentifier{FilePath: filePath, StartLine: pos.start, EndLine: pos.end})
	}

	return stats, nil
}

// deleteFileRecords drops the entry row and all chunks for filePath and
// returns the number of chunks removed.
func (c *Catalog) deleteFileRecords(ctx context.Context, tx *sql.Tx, filePath string, changes *ChunkChangeSet) (int, error) {
	existing, err := loadExistingChunks(ctx, tx, filePath)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ?`, filePath)
	if err != nil {
		return 0, fmt.Errorf("delete chunks %s: %w", filePath, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s: %w", filePath, err)
	}
	for pos := range existing {
		changes.Deletions = append(changes.Deletions, ChunkIdentifier{FilePath: filePath, StartLine: pos.start, EndLine: pos.end})
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE path = ?`, filePath)
	if err != nil {
		return 0, fmt.Errorf("delete entry %s: %w", filePath, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s: %w", filePath, err)
	}
	if removed > 0 {
		changes.RemovedEntries = append(changes.RemovedEntries, filePath)
	}

	return int(affected), nil
}

func loadExistingChunks(ctx context.Context, tx *sql.Tx, filePath string) (map[chunkPosition]string, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT start_line, end_line, content_hash
FROM chunks
WHERE file_path = ?
`, filePath)
	if err != nil {
		return nil, fmt.Errorf("load existing chunks: %w", err)
	}
	defer rows.Close()

	existing := make(map[chunkPosition]string)
	for rows.Next() {
		var start, end int
		var hash string
		if err := rows.Scan(&start, &end, &hash); err != nil {
			return nil, fmt.Errorf("scan existing chunk: %w", err)
		}
		existing[chunkPosition{start: start, end: end}] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing chunks: %w", err)
	}

	return existing, nil
}
