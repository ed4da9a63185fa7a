package catalog

import "context"

// ChunkIdentifier uniquely identifies a stored chunk by file path and line range.
type ChunkIdentifier struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ChunkChangeSet aggregates what a synchronization changed: chunk upserts,
// chunk deletions and entry paths dropped from the catalog.
type ChunkChangeSet struct {
	Upserts        []Chunk
	Deletions      []ChunkIdentifier
	RemovedEntries []string
}

// Merge combines another change set into the receiver.
func (c *ChunkChangeSet) Merge(other ChunkChangeSet) {
	c.Upserts = append(c.Upserts, other.Upserts...)
	c.Deletions = append(c.Deletions, other.Deletions...)
	c.RemovedEntries = append(c.RemovedEntries, other.RemovedEntries...)
}

// IsEmpty reports whether there are no recorded changes.
func (c ChunkChangeSet) IsEmpty() bool {
	return len(c.Upserts) == 0 && len(c.Deletions) == 0 && len(c.RemovedEntries) == 0
}

// ChunkSyncTarget consumes change sets after each synchronization.
type ChunkSyncTarget interface {
	ApplyChunkChanges(ctx context.Context, changes ChunkChangeSet) error
}
