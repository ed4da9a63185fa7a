package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

// MeilisearchConfig captures connection settings for optional search synchronization.
type MeilisearchConfig struct {
	Host   string `yaml:"host" json:"host" env:"HOST"`
	APIKey string `yaml:"api_key" json:"api_key" env:"API_KEY"`
	Index  string `yaml:"index" json:"index" env:"INDEX"`
}

// chunkNamespace scopes document ids so the same chunk always maps to the
// same Meilisearch primary key.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("filenode:chunk"))

type meilisearchTarget struct {
	client *meilisearch.Client
	index  *meilisearch.Index
	logger *slog.Logger
}

func (c *Catalog) initMeilisearch() {
	target, err := newMeilisearchTarget(context.Background(), c.opts.Meilisearch, c.loggerOrDefault())
	if err != nil {
		c.loggerOrDefault().Warn("Failed to initialize Meilisearch", "error", err)
		return
	}
	if target == nil {
		return
	}
	c.RegisterSyncTarget(target)
}

func newMeilisearchTarget(ctx context.Context, cfg MeilisearchConfig, logger *slog.Logger) (ChunkSyncTarget, error) {
	indexName := strings.TrimSpace(cfg.Index)
	if indexName == "" {
		return nil, nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "http://localhost:7700"
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: strings.TrimSpace(cfg.APIKey),
	})

	t := &meilisearchTarget{client: client, index: client.Index(indexName), logger: logger}
	if err := t.ensureIndex(ctx, indexName); err != nil {
		return nil, fmt.Errorf("prepare index %s: %w", indexName, err)
	}
	logger.Info("Meilisearch sync enabled", "host", host, "index", indexName)
	return t, nil
}

func (t *meilisearchTarget) ensureIndex(ctx context.Context, indexName string) error {
	if _, err := t.client.GetIndex(indexName); err != nil {
		var meiliErr *meilisearch.Error
		if !errors.As(err, &meiliErr) || meiliErr.MeilisearchApiError.Code != "index_not_found" {
			return err
		}
		task, createErr := t.client.CreateIndex(&meilisearch.IndexConfig{Uid: indexName, PrimaryKey: "id"})
		if createErr != nil {
			return createErr
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	searchable, err := t.index.GetSearchableAttributes()
	if err != nil {
		return err
	}
	if want := []string{"content", "file_path"}; !slices.Equal(derefSlice(searchable), want) {
		task, err := t.index.UpdateSearchableAttributes(&want)
		if err != nil {
			return err
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	filterable, err := t.index.GetFilterableAttributes()
	if err != nil {
		return err
	}
	if want := []string{"file_path"}; !slices.Equal(derefSlice(filterable), want) {
		task, err := t.index.UpdateFilterableAttributes(&want)
		if err != nil {
			return err
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	return nil
}

func (t *meilisearchTarget) waitForTask(ctx context.Context, task *meilisearch.TaskInfo) error {
	if task == nil || task.TaskUID == 0 {
		return nil
	}
	_, err := t.client.WaitForTask(task.TaskUID, meilisearch.WaitParams{Context: ctx})
	return err
}

// ApplyChunkChanges pushes upserted chunks as documents and deletes the
// documents of removed chunks.
func (t *meilisearchTarget) ApplyChunkChanges(ctx context.Context, changes ChunkChangeSet) error {
	if len(changes.Upserts) > 0 {
		task, err := t.index.AddDocuments(makeMeiliDocuments(changes.Upserts))
		if err != nil {
			return fmt.Errorf("add documents: %w", err)
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	if len(changes.Deletions) > 0 {
		ids := make([]string, 0, len(changes.Deletions))
		for _, id := range changes.Deletions {
			ids = append(ids, chunkDocumentID(id.FilePath, id.StartLine, id.EndLine))
		}
		task, err := t.index.DeleteDocuments(ids)
		if err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	t.logger.Debug("Applied changes to Meilisearch", "upserts", len(changes.Upserts), "deletions", len(changes.Deletions))
	return nil
}

func makeMeiliDocuments(chunks []Chunk) []meiliChunkDocument {
	docs := make([]meiliChunkDocument, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, meiliChunkDocument{
			ID:          chunkDocumentID(chunk.FilePath, chunk.StartLine, chunk.EndLine),
			FilePath:    chunk.FilePath,
			StartLine:   chunk.StartLine,
			EndLine:     chunk.EndLine,
			Content:     chunk.Content,
			ContentHash: chunk.ContentHash,
		})
	}
	return docs
}

// chunkDocumentID derives a stable document id for a chunk. Meilisearch only
// accepts alphanumerics, hyphens and underscores in primary keys, so the
// path and line range are folded into a name-based UUID.
func chunkDocumentID(path string, start, end int) string {
	return uuid.NewSHA1(chunkNamespace, fmt.Appendf(nil, "%s:%d-%d", path, start, end)).String()
}

func derefSlice(ptr *[]string) []string {
	if ptr == nil {
		return nil
	}
	return *ptr
}

type meiliChunkDocument struct {
	ID          string `json:"id"`
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
}
