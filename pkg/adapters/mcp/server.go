package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/logging"
	"github.com/aretw0/statemap/internal/presentation/graph"
	"github.com/aretw0/statemap/internal/presentation/tui"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/layout"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProjectResult is the structured output of project_layout.
type ProjectResult struct {
	Config      *domain.Document `json:"config" jsonschema_description:"The projected state configuration, null when the layout has no entry point"`
	Diagnostics []string         `json:"diagnostics" jsonschema_description:"Links or nodes that did not make it into the configuration unchanged"`
}

// ValidationResult is the structured output of validate_config.
type ValidationResult struct {
	Valid  bool     `json:"valid" jsonschema_description:"True when the configuration satisfies every structural invariant"`
	Errors []string `json:"errors" jsonschema_description:"Every violation found"`
}

// Server exposes the converter as an MCP Server.
type Server struct {
	converter ports.Converter
	diagrams  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithManager exposes stored diagrams as resources.
func WithManager(m *session.Manager) Option {
	return func(s *Server) {
		s.diagrams = m
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(converter ports.Converter, opts ...Option) *Server {
	s := &Server{
		converter: converter,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("statemap-mcp", strings.TrimSpace(statemap.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	allowAll := cors.AllowAll()
	mux := http.NewServeMux()
	mux.Handle("/sse", allowAll.Handler(sseServer.SSEHandler()))
	mux.Handle("/message", allowAll.Handler(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: project_layout
	projectTool := mcp.NewTool("project_layout",
		mcp.WithDescription("Project a diagram layout (GraphLinksModel JSON) into a state configuration."),
		mcp.WithString("layout", mcp.Required(), mcp.Description("The layout document as JSON")),
		mcp.WithOutputSchema[ProjectResult](),
	)
	s.mcpServer.AddTool(projectTool, mcp.NewStructuredToolHandler(s.handleProject))

	// TOOL: hydrate_config
	s.mcpServer.AddTool(mcp.NewTool("hydrate_config",
		mcp.WithDescription("Build a diagram layout (without coordinates) from a state configuration. Invalid configurations are rejected with every violation listed."),
		mcp.WithString("config", mcp.Required(), mcp.Description("The state configuration as JSON or YAML")),
	), s.handleHydrate)

	// TOOL: validate_config
	validateTool := mcp.NewTool("validate_config",
		mcp.WithDescription("Check the structural invariants of a state configuration and report every violation."),
		mcp.WithString("config", mcp.Required(), mcp.Description("The state configuration as JSON or YAML")),
		mcp.WithOutputSchema[ValidationResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: render_mermaid
	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render a state configuration as a Mermaid flowchart."),
		mcp.WithString("config", mcp.Required(), mcp.Description("The state configuration as JSON or YAML")),
	), s.handleMermaid)

	// TOOL: describe_config
	s.mcpServer.AddTool(mcp.NewTool("describe_config",
		mcp.WithDescription("Summarize a state configuration as markdown: entities, links and validation problems."),
		mcp.WithString("config", mcp.Required(), mcp.Description("The state configuration as JSON or YAML")),
	), s.handleDescribe)
}

// Handler methods for structured tools

func (s *Server) handleProject(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProjectResult, error) {
	raw, _ := args["layout"].(string)

	g, err := layout.Decode([]byte(raw))
	if err != nil {
		return ProjectResult{}, fmt.Errorf("invalid layout: %w", err)
	}

	doc := s.converter.Project(ctx, g)
	_, diagnostics := projector.Report(g)

	res := ProjectResult{Config: doc, Diagnostics: []string{}}
	for _, d := range diagnostics {
		res.Diagnostics = append(res.Diagnostics, d.String())
	}
	return res, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidationResult, error) {
	raw, _ := args["config"].(string)

	doc, err := codec.Sniff([]byte(raw))
	if err != nil {
		return ValidationResult{}, fmt.Errorf("invalid config: %w", err)
	}

	errs := s.converter.Validate(ctx, doc)
	res := ValidationResult{Valid: len(errs) == 0, Errors: []string{}}
	for _, e := range errs {
		res.Errors = append(res.Errors, e.Error())
	}
	return res, nil
}

func (s *Server) handleHydrate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.parseConfig(request)
	if errResult != nil {
		return errResult, nil
	}

	g, err := s.converter.Hydrate(ctx, doc)
	if err != nil {
		if statemap.IsRejected(err) {
			s.logger.Warn("MCP Hydrate: configuration rejected", "err", err)
		}
		return mcp.NewToolResultError(fmt.Sprintf("hydrate failed: %v", err)), nil
	}

	out, err := layout.Encode(g)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.parseConfig(request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(doc, nil)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.parseConfig(request)
	if errResult != nil {
		return errResult, nil
	}
	report := tui.Report{Document: doc, Errors: s.converter.Validate(ctx, doc)}
	return mcp.NewToolResultText(report.Markdown()), nil
}

func (s *Server) parseConfig(request mcp.CallToolRequest) (*domain.Document, *mcp.CallToolResult) {
	raw, err := request.RequireString("config")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	doc, err := codec.Sniff([]byte(raw))
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid config: %v", err))
	}
	return doc, nil
}

func (s *Server) registerResources() {
	if s.diagrams == nil {
		return
	}

	// EXPOSE: statemap://diagrams
	s.mcpServer.AddResource(mcp.NewResource("statemap://diagrams", "Stored diagrams",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.diagrams.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list diagrams: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "statemap://diagrams",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: statemap://diagrams/{id}/config
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate("statemap://diagrams/{id}/config", "Diagram configuration",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimSuffix(strings.TrimPrefix(request.Params.URI, "statemap://diagrams/"), "/config")
		d, err := s.diagrams.Load(ctx, id)
		if errors.Is(err, domain.ErrDiagramNotFound) {
			return nil, fmt.Errorf("diagram %q not found", id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load diagram: %w", err)
		}
		out, err := codec.Encode(d.Config, codec.JSON)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(out),
			},
		}, nil
	})
}
