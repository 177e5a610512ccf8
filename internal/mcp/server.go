// Package mcp exposes the snapshot pipeline over the Model Context Protocol
// so agent tooling can drive it without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/hostprint/internal/collect"
	"github.com/ppiankov/hostprint/internal/collect/builtin"
	"github.com/ppiankov/hostprint/internal/compare"
	"github.com/ppiankov/hostprint/internal/config"
)

// Server wraps the MCP SDK server around the snapshot pipeline.
type Server struct {
	mcpServer *mcpsdk.Server
	cfg       *config.Config
	reg       *collect.Registry
	cls       *compare.Classifier
	log       logr.Logger
}

// New creates an MCP server from loaded configuration. The built-in
// collector suite is registered, honoring the config's disabled list.
func New(cfg *config.Config, version string, log logr.Logger) (*Server, error) {
	cls, err := compare.NewClassifier(cfg.Severity)
	if err != nil {
		return nil, fmt.Errorf("failed to build severity classifier: %w", err)
	}

	reg := collect.NewRegistry()
	builtin.Register(reg, cfg.Assembly.Disabled)

	s := &Server{
		cfg: cfg,
		reg: reg,
		cls: cls,
		log: log,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "hostprint",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all hostprint tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snapshot_create",
		Description: "Collect the host's configuration surface and save it as a snapshot artifact. Returns the artifact path and its canonical digest.",
	}, s.handleSnapshotCreate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snapshot_compare",
		Description: "Compare two saved snapshots and return the severity-classified changes between them.",
	}, s.handleSnapshotCompare)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snapshot_digest",
		Description: "Return the canonical digest of a saved snapshot artifact after verifying its integrity.",
	}, s.handleSnapshotDigest)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "collector_list",
		Description: "List the available collectors with their descriptions.",
	}, s.handleCollectorList)
}
