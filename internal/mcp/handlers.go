package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/hostprint/internal/collect"
	"github.com/ppiankov/hostprint/internal/collect/builtin"
	"github.com/ppiankov/hostprint/internal/compare"
	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/store"
)

// --- Input/Output types ---

// SnapshotCreateInput defines parameters for the snapshot_create tool.
type SnapshotCreateInput struct {
	OutputPath string   `json:"output_path,omitempty" jsonschema:"where to write the artifact; defaults to the configured snapshot directory"`
	Hash       *bool    `json:"hash,omitempty" jsonschema:"hash sensitive fields; defaults to the configured setting"`
	Collectors []string `json:"collectors,omitempty" jsonschema:"run only these collectors"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"skip these collectors"`
}

// SnapshotCreateOutput describes the saved artifact.
type SnapshotCreateOutput struct {
	Path       string   `json:"path"`
	Digest     string   `json:"digest"`
	Hostname   string   `json:"hostname"`
	CreatedAt  string   `json:"created_at"`
	Hashed     bool     `json:"hashed"`
	Collectors int      `json:"collectors"`
	Failures   []string `json:"failures,omitempty"`
	SizeBytes  int64    `json:"size_bytes"`
}

// SnapshotCompareInput defines parameters for the snapshot_compare tool.
type SnapshotCompareInput struct {
	BaselinePath string   `json:"baseline_path" jsonschema:"path of the baseline snapshot artifact"`
	CurrentPath  string   `json:"current_path" jsonschema:"path of the current snapshot artifact"`
	Ignore       []string `json:"ignore,omitempty" jsonschema:"collectors to drop from both snapshots before comparing"`
}

// SnapshotCompareOutput carries the structured diff.
type SnapshotCompareOutput struct {
	Hostname    string                 `json:"hostname"`
	HasChanges  bool                   `json:"has_changes"`
	MaxSeverity string                 `json:"max_severity,omitempty"`
	Entries     []model.DiffEntry      `json:"entries,omitempty"`
	Summary     map[model.Severity]int `json:"summary"`
}

// SnapshotDigestInput defines parameters for the snapshot_digest tool.
type SnapshotDigestInput struct {
	Path string `json:"path" jsonschema:"path of the snapshot artifact"`
}

// SnapshotDigestOutput carries the canonical digest.
type SnapshotDigestOutput struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// CollectorListInput is empty — no parameters needed.
type CollectorListInput struct{}

// CollectorListOutput lists available collectors.
type CollectorListOutput struct {
	Collectors []CollectorInfo `json:"collectors"`
}

// CollectorInfo describes one collector.
type CollectorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// --- Handlers ---

// Encryption is deliberately absent here: a passphrase would have to transit
// the MCP channel in the clear. Agents that need encrypted artifacts use the
// CLI.
func (s *Server) handleSnapshotCreate(ctx context.Context, req *mcpsdk.CallToolRequest, input SnapshotCreateInput) (*mcpsdk.CallToolResult, SnapshotCreateOutput, error) {
	reg, err := s.reg.Subset(input.Collectors, input.Exclude)
	if err != nil {
		return nil, SnapshotCreateOutput{}, err
	}

	hash := s.cfg.Hashing.Enabled
	if input.Hash != nil {
		hash = *input.Hash
	}

	snap, err := collect.Assemble(ctx, reg, collect.Options{
		Parallel:  s.cfg.Assembly.Parallel,
		Timeout:   time.Duration(s.cfg.Assembly.Timeout),
		Hash:      hash,
		HashRules: s.cfg.Hashing.Rules,
		Logger:    s.log,
	})
	if err != nil {
		return nil, SnapshotCreateOutput{}, err
	}

	path := input.OutputPath
	if path == "" {
		if err := os.MkdirAll(s.cfg.Storage.Dir, 0o700); err != nil {
			return nil, SnapshotCreateOutput{}, fmt.Errorf("failed to create snapshot dir: %w", err)
		}
		path = store.ArtifactPath(s.cfg.Storage.Dir, snap.Hostname, snap.CreatedAt)
	}

	if err := store.Save(snap, path, nil, false); err != nil {
		return nil, SnapshotCreateOutput{}, err
	}
	digest, err := store.Digest(path, nil)
	if err != nil {
		return nil, SnapshotCreateOutput{}, err
	}

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}

	return nil, SnapshotCreateOutput{
		Path:       path,
		Digest:     digest,
		Hostname:   snap.Hostname,
		CreatedAt:  snap.CreatedAt.Format(time.RFC3339),
		Hashed:     snap.Hashed,
		Collectors: len(snap.Readings),
		Failures:   snap.FailedNames(),
		SizeBytes:  size,
	}, nil
}

func (s *Server) handleSnapshotCompare(ctx context.Context, req *mcpsdk.CallToolRequest, input SnapshotCompareInput) (*mcpsdk.CallToolResult, SnapshotCompareOutput, error) {
	baseline, err := store.Load(input.BaselinePath, nil)
	if err != nil {
		return nil, SnapshotCompareOutput{}, err
	}
	current, err := store.Load(input.CurrentPath, nil)
	if err != nil {
		return nil, SnapshotCompareOutput{}, err
	}

	for _, name := range input.Ignore {
		delete(baseline.Readings, name)
		delete(current.Readings, name)
	}

	diff, err := compare.Compare(baseline, current, s.cls)
	if err != nil {
		return nil, SnapshotCompareOutput{}, err
	}

	out := SnapshotCompareOutput{
		Hostname:   diff.Hostname,
		HasChanges: diff.HasChanges(),
		Entries:    diff.Entries,
		Summary:    diff.Summary,
	}
	if max, ok := diff.MaxSeverity(); ok {
		out.MaxSeverity = string(max)
	}
	return nil, out, nil
}

func (s *Server) handleSnapshotDigest(ctx context.Context, req *mcpsdk.CallToolRequest, input SnapshotDigestInput) (*mcpsdk.CallToolResult, SnapshotDigestOutput, error) {
	digest, err := store.Digest(input.Path, nil)
	if err != nil {
		return nil, SnapshotDigestOutput{}, err
	}
	return nil, SnapshotDigestOutput{Path: input.Path, Digest: digest}, nil
}

func (s *Server) handleCollectorList(ctx context.Context, req *mcpsdk.CallToolRequest, input CollectorListInput) (*mcpsdk.CallToolResult, CollectorListOutput, error) {
	names := s.reg.Names()
	infos := make([]CollectorInfo, len(names))
	for i, name := range names {
		infos[i] = CollectorInfo{Name: name, Description: builtin.Descriptions[name]}
	}
	return nil, CollectorListOutput{Collectors: infos}, nil
}
