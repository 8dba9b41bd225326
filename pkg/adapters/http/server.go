package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/logging"
	"github.com/aretw0/statemap/internal/presentation/graph"
	"github.com/aretw0/statemap/pkg/adapters/memory"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/layout"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/schema"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	converter ports.Converter
	diagrams  *session.Manager
	streams   *StreamManager
	logger    *slog.Logger
	metrics   http.Handler
	origins   []string
}

// Option configures the Server.
type Option func(*Server)

// WithConverter replaces the default statemap.Core converter, typically with
// an instrumented one.
func WithConverter(c ports.Converter) Option {
	return func(s *Server) {
		s.converter = c
	}
}

// WithManager sets the diagram manager backing the /diagrams routes.
func WithManager(m *session.Manager) Option {
	return func(s *Server) {
		s.diagrams = m
	}
}

// WithLogger configures the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler serves h on /metrics instead of the default registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigins restricts CORS to the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewHandler creates the HTTP handler. Without options it converts with
// statemap.Core and keeps diagrams in memory.
func NewHandler(opts ...Option) (http.Handler, error) {
	s := &Server{
		converter: statemap.Core{},
		logger:    logging.NewNop(),
		metrics:   promhttp.Handler(),
		origins:   []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.diagrams == nil {
		s.diagrams = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.streams = NewStreamManager(s.logger)

	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(swagger, s.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", s.metrics)

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/events", s.SubscribeEvents)

		r.Post("/project", s.Project)
		r.Post("/hydrate", s.Hydrate)
		r.Post("/validate", s.Validate)

		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.ListDiagrams)
			r.Get("/{id}", s.GetDiagram)
			r.Put("/{id}", s.PutDiagram)
			r.Delete("/{id}", s.DeleteDiagram)
			r.Get("/{id}/config", s.GetDiagramConfig)
			r.Put("/{id}/config", s.PutDiagramConfig)
			r.Get("/{id}/mermaid", s.GetDiagramMermaid)
		})
	})

	return r, nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Statemap API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ProjectResponse is the body of POST /project.
type ProjectResponse struct {
	Config      json.RawMessage        `json:"config"`
	Diagnostics []projector.Diagnostic `json:"diagnostics"`
}

// ValidationResult is the body of POST /validate and of 422 responses.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CommitResponse is returned by the diagram write routes.
type CommitResponse struct {
	Diagram *domain.Diagram      `json:"diagram"`
	Diff    *domain.DocumentDiff `json:"diff,omitempty"`
}

// CommitMessage is the payload of an SSE event.
type CommitMessage struct {
	Diagram string               `json:"diagram"`
	Diff    *domain.DocumentDiff `json:"diff"`
}

type putDiagramRequest struct {
	Name   string          `json:"name"`
	Layout json.RawMessage `json:"layout"`
}

// Project handles POST /project.
func (s *Server) Project(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g, err := layout.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("Project: invalid layout", "err", err)
		return
	}

	doc := s.converter.Project(r.Context(), g)
	_, diagnostics := projector.Report(g)

	config, err := encodeConfig(doc)
	if err != nil {
		s.internalError(w, "Project", err)
		return
	}
	if diagnostics == nil {
		diagnostics = []projector.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, ProjectResponse{Config: config, Diagnostics: diagnostics})
}

// Hydrate handles POST /hydrate.
func (s *Server) Hydrate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}

	g, err := s.converter.Hydrate(r.Context(), doc)
	if err != nil {
		s.hydrateError(w, err)
		return
	}

	out, err := layout.Encode(g)
	if err != nil {
		s.internalError(w, "Hydrate", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// Validate handles POST /validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	errs := s.converter.Validate(r.Context(), doc)
	writeJSON(w, http.StatusOK, validationResult(errs))
}

// ListDiagrams handles GET /diagrams.
func (s *Server) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.diagrams.List(r.Context())
	if err != nil {
		s.internalError(w, "ListDiagrams", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"diagrams": ids})
}

// GetDiagram handles GET /diagrams/{id}.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// PutDiagram handles PUT /diagrams/{id}: the layout is stored verbatim next
// to the configuration projected from it.
func (s *Server) PutDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req putDiagramRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	g, err := layout.Decode(req.Layout)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, req.Layout); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	doc := s.converter.Project(r.Context(), g)
	s.commit(w, r, id, func(d *domain.Diagram) {
		if req.Name != "" {
			d.Name = req.Name
		}
		d.Layout = compact.Bytes()
		d.Config = doc
	})
}

// DeleteDiagram handles DELETE /diagrams/{id}.
func (s *Server) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.diagrams.Delete(r.Context(), id); err != nil {
		s.internalError(w, "DeleteDiagram", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDiagramConfig handles GET /diagrams/{id}/config.
func (s *Server) GetDiagramConfig(w http.ResponseWriter, r *http.Request) {
	format := codec.JSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := codec.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}

	out, err := codec.Encode(d.Config, format)
	if err != nil {
		s.internalError(w, "GetDiagramConfig", err)
		return
	}
	contentType := "application/json"
	if format == codec.YAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(out)
}

// PutDiagramConfig handles PUT /diagrams/{id}/config: the document is
// validated and hydrated, and the stored layout is replaced by the hydrated
// graph. The stored layout loses node positions.
func (s *Server) PutDiagramConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}

	g, err := s.converter.Hydrate(r.Context(), doc)
	if err != nil {
		s.hydrateError(w, err)
		return
	}
	out, err := layout.Encode(g)
	if err != nil {
		s.internalError(w, "PutDiagramConfig", err)
		return
	}

	s.commit(w, r, id, func(d *domain.Diagram) {
		d.Layout = out
		d.Config = doc
	})
}

// GetDiagramMermaid handles GET /diagrams/{id}/mermaid.
func (s *Server) GetDiagramMermaid(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(d.Config, nil))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "statemap-http",
		"version":     strings.TrimSpace(statemap.Version),
		"api_version": apiVersion,
		"attributes":  schema.AttributeSchemas,
	})
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// "diagram" query parameter restricts the stream to one diagram.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	diagramID := r.URL.Query().Get("diagram")
	s.logger.Info("SSE: Subscribing to diagram commits", "diagram", diagramID)

	ch, cancel := s.streams.Subscribe(diagramID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: commit\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// commit applies fn to the stored diagram under its lock, broadcasts the
// resulting diff and writes the CommitResponse.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, id string, fn func(d *domain.Diagram)) {
	var diff *domain.DocumentDiff
	d, err := s.diagrams.Update(r.Context(), id, func(d *domain.Diagram) error {
		prev := d.Config
		fn(d)
		diff = domain.Diff(prev, d.Config)
		return nil
	})
	if err != nil {
		s.internalError(w, "Commit", err)
		return
	}

	if diff != nil {
		s.logger.Debug("Commit: Diff calculated", "diagram", id, "diff", diff)
		if payload, err := json.Marshal(CommitMessage{Diagram: id, Diff: diff}); err == nil {
			s.streams.Broadcast(id, string(payload))
		}
	}
	writeJSON(w, http.StatusOK, CommitResponse{Diagram: d, Diff: diff})
}

func (s *Server) loadDiagram(w http.ResponseWriter, r *http.Request) (*domain.Diagram, bool) {
	id := chi.URLParam(r, "id")
	d, err := s.diagrams.Load(r.Context(), id)
	if errors.Is(err, domain.ErrDiagramNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		s.internalError(w, "LoadDiagram", err)
		return nil, false
	}
	return d, true
}

func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	doc, err := codec.Decode(body, codec.JSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("Invalid state configuration", "path", r.URL.Path, "err", err)
		return nil, false
	}
	return doc, true
}

func (s *Server) hydrateError(w http.ResponseWriter, err error) {
	if statemap.IsRejected(err) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResult(schema.ValidationErrors(err)))
		return
	}
	s.internalError(w, "Hydrate", err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, err)
}

// -- Helpers --

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return body, nil
}

func encodeConfig(doc *domain.Document) (json.RawMessage, error) {
	out, err := codec.Encode(doc, codec.JSON)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(out)), nil
}

func validationResult(errs []error) ValidationResult {
	res := ValidationResult{Valid: len(errs) == 0, Errors: make([]string, 0, len(errs))}
	for _, err := range errs {
		res.Errors = append(res.Errors, err.Error())
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
