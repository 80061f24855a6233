// Package mcp exposes the planner stores and read models as MCP tools, for
// agent clients that manage focus blocks alongside the HTTP API.
package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
)

// BlockStore defines the block operations needed by MCP tools.
type BlockStore interface {
	Upsert(ctx context.Context, req block.UpsertRequest) (block.Block, error)
	Delete(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id string) error
	List(ctx context.Context) []block.Block
}

// AssignmentStore defines the assignment operations needed by MCP tools.
type AssignmentStore interface {
	Upsert(ctx context.Context, req assignment.UpsertRequest) (assignment.Assignment, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (assignment.Assignment, error)
	List(ctx context.Context) []assignment.Assignment
	Denormalize(ctx context.Context, id string) (string, string)
}

// Config contains server configuration.
type Config struct {
	Blocks      BlockStore
	Assignments AssignmentStore
	Logger      *slog.Logger
}

const serverInstructions = `Vertex is a personal time-blocking planner.
Focus blocks are time-boxed work sessions; assignments are deliverables with
a due date and an estimated effort in hours. Blocks can link to one
assignment, and assignment progress is computed from the linked blocks'
durations. Calendar views (day, week, month, year) group blocks into fixed
buckets and hide lower priorities as the view zooms out.`

// NewServer creates and configures an MCP server with all planner tools.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "vertex",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &planner{blocks: cfg.Blocks, assignments: cfg.Assignments})

	return server
}
