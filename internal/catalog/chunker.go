package catalog

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Chunk is a line range of a text file as stored in the catalog.
type Chunk struct {
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
}

// ChunkOptions controls how text is split into line windows.
type ChunkOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

// ChunkText splits content into overlapping line windows. The returned chunks
// carry relPath in slash form.
func ChunkText(content, relPath string, opts ChunkOptions) ([]Chunk, error) {
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if opts.ChunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative")
	}

	// Ensure the overlap never consumes the entire chunk.
	if opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = opts.ChunkSize - 1
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("split %s: %w", relPath, err)
	}

	if len(lines) == 0 {
		return nil, nil
	}

	step := opts.ChunkSize - opts.ChunkOverlap

	var chunks []Chunk
	for start := 0; start < len(lines); start += step {
		end := min(start+opts.ChunkSize, len(lines))

		text := strings.Join(lines[start:end], "\n")
		chunks = append(chunks, Chunk{
			FilePath:    filepath.ToSlash(relPath),
			StartLine:   start + 1,
			EndLine:     end,
			Content:     text,
			ContentHash: contentHash(text),
		})

		if end == len(lines) {
			break
		}
	}

	return chunks, nil
}

func contentHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
