// Package mcp exposes document storage and semantic search as Model Context
// Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultLimit is the number of search results when the caller gives none.
const DefaultLimit = 10

// Result is one search hit.
type Result struct {
	ID       uint    `json:"id" yaml:"id"`
	Body     string  `json:"body" yaml:"body"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Store saves documents and searches them by meaning.
type Store interface {
	Add(ctx context.Context, texts []string) ([]uint, error)
	Search(ctx context.Context, query string, limit int, distance string) ([]Result, error)
}

// Server wraps the MCP server with the document tools.
type Server struct {
	mcpServer *server.MCPServer
	store     Store
	limit     int
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by store. limit is the default
// number of search results.
func NewServer(store Store, version string, limit int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s := &Server{
		store:  store,
		limit:  limit,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"pgml",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Find stored documents closest in meaning to a query. The database embeds the query with the same transformer used for the documents."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search text"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default: %d)", s.limit)),
		),
		mcp.WithString("distance",
			mcp.Description("Distance metric: cosine (default), l2, inner_product or l1"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearch)

	addTool := mcp.NewTool("add_document",
		mcp.WithDescription("Store a document. Its embedding is computed by the database on insert."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Document text"),
		),
	)
	mcpServer.AddTool(addTool, s.handleAdd)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := request.GetInt("limit", s.limit)
	distance := request.GetString("distance", "")

	results, err := s.store.Search(ctx, query, limit, distance)
	if err != nil {
		s.logger.ErrorContext(ctx, "search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if results == nil {
		results = []Result{}
	}

	b, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}

	ids, err := s.store.Add(ctx, []string{text})
	if err != nil {
		s.logger.ErrorContext(ctx, "add failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("add failed: %v", err)), nil
	}

	b, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdin and stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
