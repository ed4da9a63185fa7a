package catalog

import (
	"context"
	"fmt"
)

// StoredEntry is a catalogued path with its chunk count.
type StoredEntry struct {
	Path        string
	Name        string
	Kind        string
	ContentHash string
	Chunks      int
	UpdatedAt   string
}

// StoredChunk represents a chunk stored in the database with metadata useful for debugging.
type StoredChunk struct {
	StartLine   int
	EndLine     int
	Content     string
	ContentHash string
	UpdatedAt   string
}

// StoredEntries returns every catalogued entry ordered by path.
func (c *Catalog) StoredEntries(ctx context.Context) ([]StoredEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT e.path, e.name, e.kind, e.content_hash, COUNT(ch.file_path), e.updated_at
FROM entries e
LEFT JOIN chunks ch ON ch.file_path = e.path
GROUP BY e.path
ORDER BY e.path
`)
	if err != nil {
		return nil, fmt.Errorf("query stored entries: %w", err)
	}
	defer rows.Close()

	var entries []StoredEntry
	for rows.Next() {
		var entry StoredEntry
		if err := rows.Scan(&entry.Path, &entry.Name, &entry.Kind, &entry.ContentHash, &entry.Chunks, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stored entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stored entries: %w", err)
	}

	return entries, nil
}

// StoredChunks returns all chunks for the provided path ordered by their starting line.
func (c *Catalog) StoredChunks(ctx context.Context, filePath string) ([]StoredChunk, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT start_line, end_line, content, content_hash, updated_at
FROM chunks
WHERE file_path = ?
ORDER BY start_line
`, filePath)
	if err != nil {
		return nil, fmt.Errorf("query stored chunks: %w", err)
	}
	defer rows.Close()

	var chunks []StoredChunk
	for rows.Next() {
		var chunk StoredChunk
		if err := rows.Scan(&chunk.StartLine, &chunk.EndLine, &chunk.Content, &chunk.ContentHash, &chunk.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stored chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stored chunks: %w", err)
	}

	return chunks, nil
}
