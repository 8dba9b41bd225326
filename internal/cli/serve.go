package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/config"
	httpadapter "github.com/aretw0/statemap/pkg/adapters/http"
	mcpadapter "github.com/aretw0/statemap/pkg/adapters/mcp"
	"github.com/aretw0/statemap/pkg/observability"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Instrumentation is the metrics registry of a long-running server with the
// converter that reports to it.
type Instrumentation struct {
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	Converter ports.Converter
}

// NewInstrumentation registers the runtime collectors and the statemap
// metrics on a fresh registry and wraps the core converter.
func NewInstrumentation() *Instrumentation {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := observability.NewMetrics(reg)
	return &Instrumentation{
		Registry:  reg,
		Metrics:   m,
		Converter: observability.NewConverter(statemap.Core{}, observability.WithMetrics(m)),
	}
}

// Handler exposes the registry for scraping.
func (i *Instrumentation) Handler() http.Handler {
	return promhttp.HandlerFor(i.Registry, promhttp.HandlerOpts{})
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Server  config.ServerConfig
	Manager *session.Manager
	// Listener replaces Server.Addr when set.
	Listener net.Listener
}

// RunServe runs the HTTP API until ctx is done, then shuts down gracefully.
func RunServe(ctx context.Context, env Env, inst *Instrumentation, opts ServeOptions) error {
	handler, err := httpadapter.NewHandler(
		httpadapter.WithConverter(inst.Converter),
		httpadapter.WithManager(opts.Manager),
		httpadapter.WithLogger(env.Logger),
		httpadapter.WithMetricsHandler(inst.Handler()),
		httpadapter.WithAllowedOrigins(opts.Server.AllowedOrigins...),
	)
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	srv := &http.Server{
		Addr:              opts.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if opts.Listener != nil {
			env.Logger.Info("Starting statemap server", "address", opts.Listener.Addr().String())
			serverErrors <- srv.Serve(opts.Listener)
			return
		}
		env.Logger.Info("Starting statemap server", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		grace := opts.Server.ShutdownGrace
		if grace <= 0 {
			grace = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		env.Logger.Info("Shutting down statemap server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			env.Logger.Warn("Graceful shutdown did not complete", "grace", grace, "err", err)
			return srv.Close()
		}
		env.Logger.Info("Statemap server stopped gracefully")
		return nil
	}
}

// MCPOptions configures RunMCP.
type MCPOptions struct {
	MCP     config.MCPConfig
	Manager *session.Manager
}

// RunMCP serves the conversion tools over the Model Context Protocol.
// The stdio transport ends when the client closes Stdin; sse ends with ctx.
func RunMCP(ctx context.Context, env Env, opts MCPOptions) error {
	srvOpts := []mcpadapter.Option{mcpadapter.WithLogger(env.Logger)}
	if opts.Manager != nil {
		srvOpts = append(srvOpts, mcpadapter.WithManager(opts.Manager))
	}
	srv := mcpadapter.NewServer(env.Converter, srvOpts...)

	switch opts.MCP.Transport {
	case "stdio", "":
		env.Logger.Info("Starting statemap MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		env.Logger.Info("Starting statemap MCP server (SSE)", "port", opts.MCP.Port)
		err := srv.ServeSSE(ctx, opts.MCP.Port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown transport %q (want stdio or sse)", opts.MCP.Transport)
}
