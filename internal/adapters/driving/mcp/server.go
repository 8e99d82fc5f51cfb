package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/annotate/internal/logger"
)

const (
	// Name identifies the server to MCP clients.
	Name = "annotate"

	// Version is the MCP server version.
	Version = "0.1.0"

	shutdownTimeout = 5 * time.Second
)

// Server exposes the annotation data layer over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a server and registers its tools and resources.
// Tools for optional ports are only registered when the port is set.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingDataService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns an HTTP handler speaking the streamable MCP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: serving over http on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
