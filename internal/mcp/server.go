// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/threadlens/threadlens/application/service"
)

// Analyzer runs the thread analysis pipeline for MCP tools.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string, opts ...service.AnalyzeOption) (service.Result, error)
}

// Scanner finds candidate threads in a subreddit for MCP tools.
type Scanner interface {
	Scan(ctx context.Context, subreddit string) (service.ScanResult, error)
}

// Server wraps the MCP server with threadlens tools.
type Server struct {
	mcpServer *server.MCPServer
	analyzer  Analyzer
	scanner   Scanner
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(analyzer Analyzer, scanner Scanner, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		analyzer: analyzer,
		scanner:  scanner,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"threadlens",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all threadlens tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	analyzeTool := mcp.NewTool("analyze_thread",
		mcp.WithDescription("Fetch a Reddit thread and extract structured product-discovery insight: pain points, buying signals, unmet needs, and product ideas"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The Reddit thread URL"),
		),
		mcp.WithString("api_key",
			mcp.Description("Optional caller-supplied OpenAI API key; results bypass the shared cache"),
		),
	)

	mcpServer.AddTool(analyzeTool, s.handleAnalyze)

	scanTool := mcp.NewTool("scan_subreddit",
		mcp.WithDescription("List the most engaging analyzable threads currently hot in a subreddit"),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("The subreddit name, with or without the r/ prefix"),
		),
	)

	mcpServer.AddTool(scanTool, s.handleScan)
}

// handleAnalyze handles the analyze_thread tool invocation.
func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	var opts []service.AnalyzeOption
	if key := request.GetString("api_key", ""); key != "" {
		opts = append(opts, service.WithUserAPIKey(key))
	}

	result, err := s.analyzer.Analyze(ctx, url, opts...)
	if err != nil {
		s.logger.Error("analysis failed", slog.String("url", url), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleScan handles the scan_subreddit tool invocation.
func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subreddit, err := request.RequireString("subreddit")
	if err != nil {
		return mcp.NewToolResultError("subreddit is required"), nil
	}

	result, err := s.scanner.Scan(ctx, subreddit)
	if err != nil {
		s.logger.Error("scan failed", slog.String("subreddit", subreddit), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for HTTP or stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
