// Package mcp provides an MCP (Model Context Protocol) server for asana-mailer.
// This allows AI agents to preview project reports through MCP tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/palantir/asana-mailer/internal/asana"
	"github.com/palantir/asana-mailer/internal/config"
	"github.com/palantir/asana-mailer/internal/render"
	"github.com/palantir/asana-mailer/internal/report"
)

// Server wraps the MCP server with asana-mailer functionality
type Server struct {
	mcpServer    *server.MCPServer
	api          *asana.Client
	cfg          *config.Config
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	Logger  *slog.Logger
}

// AllTools lists all available tools
var AllTools = []string{"mailer_preview", "mailer_project"}

// New creates a new MCP server for asana-mailer
func New(cfg Config) (*Server, error) {
	appCfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if appCfg.Asana.AccessToken == "" {
		return nil, fmt.Errorf("no Asana access token: set %s or run 'asana-mailer init'", config.AccessTokenEnvVar)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	api := asana.New(asana.Config{
		Token:   appCfg.Asana.AccessToken,
		BaseURL: appCfg.Asana.BaseURL,
		Timeout: time.Duration(appCfg.Asana.TimeoutSeconds) * time.Second,
		Logger:  log,
	})

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"asana-mailer",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		api:          api,
		cfg:          appCfg,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	// Determine which tools to register
	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	// Register tools
	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "mailer_preview":
		return s.registerPreviewTool()
	case "mailer_project":
		return s.registerProjectTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	// Start timeout checker if timeout is set
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "asana-mailer serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// registerPreviewTool registers the mailer_preview tool
func (s *Server) registerPreviewTool() error {
	tool := mcp.NewTool("mailer_preview",
		mcp.WithDescription("Render a project status report as markdown without sending it anywhere."),
		mcp.WithString("project_id",
			mcp.Description("Asana project ID (defaults to the configured project)"),
		),
		mcp.WithString("tag_filter",
			mcp.Description("Comma-separated tags a task must carry to be included"),
		),
		mcp.WithString("section_filter",
			mcp.Description("Comma-separated section names to include"),
		),
		mcp.WithNumber("completed_hours",
			mcp.Description("Include tasks completed within this many hours (default: none)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handlePreview)
	return nil
}

// registerProjectTool registers the mailer_project tool
func (s *Server) registerProjectTool() error {
	tool := mcp.NewTool("mailer_project",
		mcp.WithDescription("Show project metadata and per-section task counts."),
		mcp.WithString("project_id",
			mcp.Description("Asana project ID (defaults to the configured project)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleProject)
	return nil
}

// Tool handlers

func (s *Server) handlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	projectID, _ := args["project_id"].(string)
	tagFilter, _ := args["tag_filter"].(string)
	sectionFilter, _ := args["section_filter"].(string)

	hours := 0
	if h, ok := args["completed_hours"].(float64); ok {
		hours = int(h)
	}

	result, err := s.executePreview(ctx, projectID, tagFilter, sectionFilter, hours)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	projectID, _ := args["project_id"].(string)

	result, err := s.executeProject(ctx, projectID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Execution functions (implementations)

func (s *Server) executePreview(ctx context.Context, projectID, tagFilter, sectionFilter string, hours int) (string, error) {
	projectID = s.resolveProjectID(projectID)
	if projectID == "" {
		return "", fmt.Errorf("project_id parameter is required (no project configured)")
	}

	opts := report.AssembleOptions{
		TagFilters:     report.NewStringSet(splitCSV(tagFilter)...),
		SectionFilters: report.NewStringSet(normalizeSectionFilters(splitCSV(sectionFilter))...),
	}
	if hours > 0 {
		opts.CompletedLookback = time.Duration(hours) * time.Hour
	}

	now := time.Now()
	project, err := report.Assemble(ctx, s.api, projectID, now, opts)
	if err != nil {
		return "", fmt.Errorf("assemble report: %w", err)
	}

	renderer, err := render.New(render.Options{})
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	_, text, err := renderer.Render(project, now)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	return text, nil
}

func (s *Server) executeProject(ctx context.Context, projectID string) (string, error) {
	projectID = s.resolveProjectID(projectID)
	if projectID == "" {
		return "", fmt.Errorf("project_id parameter is required (no project configured)")
	}

	project, err := report.Assemble(ctx, s.api, projectID, time.Now(), report.AssembleOptions{})
	if err != nil {
		return "", fmt.Errorf("assemble report: %w", err)
	}

	sections := make([]map[string]interface{}, 0, len(project.Sections))
	taskTotal := 0
	for _, sec := range project.Sections {
		sections = append(sections, map[string]interface{}{
			"name":  sec.Name,
			"tasks": len(sec.Tasks),
		})
		taskTotal += len(sec.Tasks)
	}

	return toJSON(map[string]interface{}{
		"id":          project.GID,
		"name":        project.Name,
		"description": project.Description,
		"sections":    sections,
		"task_count":  taskTotal,
	})
}

// resolveProjectID falls back to the configured project when the caller
// does not name one.
func (s *Server) resolveProjectID(projectID string) string {
	if projectID != "" {
		return projectID
	}
	return s.cfg.Asana.ProjectID
}

// Helper functions

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeSectionFilters appends the trailing colon to section names that
// lack it, so callers can pass either "In Flight" or "In Flight:".
func normalizeSectionFilters(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if report.IsSectionMarker(name) {
			out[i] = name
		} else {
			out[i] = name + ":"
		}
	}
	return out
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
