// ABOUTME: Server facade over the MCP SDK: identity, options, transport selection.
// ABOUTME: Owns the tool registry and the transport session lifecycle.

package cantrip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transport selects how Run serves the MCP session.
type Transport string

const (
	// TransportStdio serves a single session over stdin/stdout.
	TransportStdio Transport = "stdio"
	// TransportSSE serves sessions over HTTP with server-sent events.
	TransportSSE Transport = "sse"
	// TransportStreamableHTTP serves sessions over the streamable HTTP
	// transport.
	TransportStreamableHTTP Transport = "streamable-http"
)

// ErrUnknownTransport indicates a transport the server does not support.
var ErrUnknownTransport = errors.New("unknown transport")

const (
	defaultName    = "Cantrip Server"
	defaultVersion = "0.1.0"
	defaultAddr    = "127.0.0.1:8000"
	shutdownGrace  = 5 * time.Second
)

// Options configures a Server. A nil Options means all defaults.
type Options struct {
	// Version is the implementation version advertised to clients.
	// Defaults to "0.1.0".
	Version string
	// Instructions is usage guidance surfaced to MCP clients.
	Instructions string
	// Logger receives registration and lifecycle logs. Defaults to
	// slog.Default(). Point it at stderr when using the stdio
	// transport; stdout carries the protocol stream.
	Logger *slog.Logger
	// Addr is the listen address for the HTTP-based transports.
	// Defaults to 127.0.0.1:8000.
	Addr string
}

// Server exposes plain functions as MCP tools under one server
// identity. Construct with New, register tools with AddFunc or
// ToolFunc, then call Run.
type Server struct {
	name   string
	id     string
	addr   string
	logger *slog.Logger
	mcp    *mcp.Server

	mu    sync.RWMutex
	tools map[string]*Tool
}

// New creates a Server with the given display name ("Cantrip Server"
// when empty).
func New(name string, opts *Options) *Server {
	if name == "" {
		name = defaultName
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Version == "" {
		o.Version = defaultVersion
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Addr == "" {
		o.Addr = defaultAddr
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: o.Version,
	}, &mcp.ServerOptions{
		Instructions: o.Instructions,
		HasTools:     true,
	})

	return &Server{
		name:   name,
		id:     uuid.New().String(),
		addr:   o.Addr,
		logger: o.Logger,
		mcp:    srv,
		tools:  make(map[string]*Tool),
	}
}

// Name returns the server's display name.
func (s *Server) Name() string { return s.name }

// MCP returns the underlying SDK server, for callers that need direct
// access to it (resources, prompts, custom transports).
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Run serves MCP over the selected transport until ctx is canceled or
// the session ends. The HTTP-based transports listen on Options.Addr
// and shut down gracefully on cancellation.
func (s *Server) Run(ctx context.Context, transport Transport) error {
	s.logger.Info("starting server",
		"server", s.name,
		"server_id", s.id,
		"transport", string(transport),
		"tools", s.toolCount(),
	)

	switch transport {
	case TransportStdio:
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportSSE, TransportStreamableHTTP:
		handler, err := s.Handler(transport)
		if err != nil {
			return err
		}
		return s.serveHTTP(ctx, handler)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// Handler returns an http.Handler for the HTTP-based transports, for
// mounting on a caller-owned mux. The stdio transport has no HTTP form.
func (s *Server) Handler(transport Transport) (http.Handler, error) {
	switch transport {
	case TransportSSE:
		return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil), nil
	case TransportStreamableHTTP:
		return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// serveHTTP runs the HTTP server until it fails or ctx is canceled,
// then shuts down with a fresh timeout context since the original one
// is already canceled.
func (s *Server) serveHTTP(ctx context.Context, handler http.Handler) error {
	httpSrv := &http.Server{Addr: s.addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "server", s.name, "server_id", s.id, "addr", s.addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down", "server", s.name, "server_id", s.id)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) toolCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tools)
}
