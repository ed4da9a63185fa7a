package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// ShellTargetConfig configures a command that receives each change set as
// JSON on stdin.
type ShellTargetConfig struct {
	Command string `yaml:"command" json:"command" env:"COMMAND"`
}

// IsEmpty reports whether no command is configured.
func (c ShellTargetConfig) IsEmpty() bool {
	return strings.TrimSpace(c.Command) == ""
}

type shellTarget struct {
	command string
}

type shellPayload struct {
	Upserts        []Chunk           `json:"upserts"`
	Deletions      []ChunkIdentifier `json:"deletions"`
	RemovedEntries []string          `json:"removed_entries"`
}

func newShellTarget(cfg *ShellTargetConfig) ChunkSyncTarget {
	if cfg == nil || cfg.IsEmpty() {
		return nil
	}
	return &shellTarget{command: strings.TrimSpace(cfg.Command)}
}

// ApplyChunkChanges runs the command through sh with the change set on stdin.
func (s *shellTarget) ApplyChunkChanges(ctx context.Context, changes ChunkChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	payload, err := json.Marshal(shellPayload{
		Upserts:        nonNil(changes.Upserts),
		Deletions:      nonNil(changes.Deletions),
		RemovedEntries: nonNil(changes.RemovedEntries),
	})
	if err != nil {
		return fmt.Errorf("encode change set: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	cmd.Stdin = bytes.NewReader(payload)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("shell target failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
