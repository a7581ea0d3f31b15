// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: MCP server construction and transport management.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/registry"
)

const (
	serverName    = "coredump-mcp"
	serverVersion = "1.0.0"
)

// Transport selects how the MCP server communicates with its client.
type Transport string

const (
	// TransportStdio uses stdin/stdout for communication (default).
	TransportStdio Transport = "stdio"
	// TransportHTTP uses Streamable HTTP transport.
	TransportHTTP Transport = "http"
)

// endpointPath is the path of the MCP endpoint for the HTTP transport.
const endpointPath = "/mcp"

// Inspector is the interface to the coredump registry.
//
//go:generate mockgen -destination=mock_mcp/mock_mcp.go . Inspector
type Inspector interface {
	// Refresh should list the coredumps and replace the cached list.
	Refresh(ctx context.Context, onlyPresent bool) ([]coredump.Dump, error)
	// Dumps should return the cached list.
	Dumps() []coredump.Dump
	// Detail should return the dump with the details filled in.
	Detail(ctx context.Context, id string) (coredump.Dump, error)
	// Extract should write the dump to dst.
	Extract(ctx context.Context, id string, dst string) (string, error)
	// Remove should delete the dump storage.
	Remove(ctx context.Context, id string) (bool, error)
	// StackTrace should return the stack trace of the dump.
	StackTrace(ctx context.Context, id string) (*coredump.StackTrace, error)
	// Config should return the coredump configuration.
	Config(ctx context.Context) (registry.Config, error)
	// SetConfig should enable or disable coredump generation.
	SetConfig(ctx context.Context, enabled bool) (bool, error)
}

var _ Inspector = (*registry.Registry)(nil)

// Server wraps an MCP server and the coredump registry.
type Server struct {
	mcp         *mcpsrv.MCPServer
	insp        Inspector
	logger      *slog.Logger
	allowRemove bool
}

// Option is the functional option for the Server.
type Option func(*Server)

// WithLogger sets the logger.  A nil logger is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithInspector sets the coredump registry.  If not set, a registry with
// default settings is used.
func WithInspector(insp Inspector) Option {
	return func(s *Server) {
		if insp != nil {
			s.insp = insp
		}
	}
}

// WithRemove enables the remove_coredump tool.
func WithRemove(allow bool) Option {
	return func(s *Server) {
		s.allowRemove = allow
	}
}

// New creates a new MCP server.  The server is populated with all available
// tools and resources but does not start listening until one of the Serve*
// methods is called.
func New(opts ...Option) *Server {
	s := &Server{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.insp == nil {
		s.insp = registry.New(registry.WithLogger(s.logger))
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithToolCapabilities(false),
		mcpsrv.WithResourceCapabilities(false, false),
		mcpsrv.WithInstructions(instructions(s.allowRemove)),
	)

	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}
	mcpServer.AddResource(s.resourceDumps())
	for _, rt := range s.resourceTemplates() {
		mcpServer.AddResourceTemplate(rt.Template, rt.Handler)
	}

	s.mcp = mcpServer
	return s
}

// instructions returns the server instructions for the connecting agent.
func instructions(allowRemove bool) string {
	var removal string
	if allowRemove {
		removal = "- Remove a crash dump from the disk (remove_coredump)\n"
	}
	return fmt.Sprintf(`You are connected to a coredump MCP server.

The server inspects the crash dumps collected by systemd-coredump on this
machine, using coredumpctl and gdb.

Available tools allow you to:
- List crash dumps (list_coredumps), optionally only those still on disk
- Get the details of a dump (get_coredump_info)
- Extract a dump to a file (extract_coredump)
- Get the stack trace of all threads of a dump (get_stack_trace)
- Check and change whether dumps are generated (get_coredump_config,
  set_coredump_config)
%s
Dump ids look like "Sat 2023-06-17 01:50:45 JST-2465" (timestamp, dash,
pid).  In resource URIs they must be percent-encoded.
`, removal)
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for the Streamable HTTP transport.  The
// MCP endpoint is at /mcp, and /healthz reports the liveness.
func (s *Server) Handler() http.Handler {
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithEndpointPath(endpointPath),
	)
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Handle(endpointPath, streamSrv)
	return r
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as "127.0.0.1:8484".
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr, "endpoint", endpointPath)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		if err := httpSrv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	tools := []mcpsrv.ServerTool{
		s.toolListCoredumps(),
		s.toolGetCoredumpInfo(),
		s.toolExtractCoredump(),
		s.toolGetStackTrace(),
		s.toolGetCoredumpConfig(),
		s.toolSetCoredumpConfig(),
	}
	if s.allowRemove {
		tools = append(tools, s.toolRemoveCoredump())
	}
	return tools
}

// AddTool adds an additional tool to the MCP server.  This can be called after
// New but before serving starts.
func (s *Server) AddTool(tool mcpsrv.ServerTool) {
	s.mcp.AddTool(tool.Tool, tool.Handler)
}

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// boolArg extracts a named bool argument from a tool call request.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// requiredBool extracts a named bool argument that must be present.
func requiredBool(req mcplib.CallToolRequest, name string) (bool, bool) {
	args := req.GetArguments()
	if args == nil {
		return false, false
	}
	b, ok := args[name].(bool)
	return b, ok
}
