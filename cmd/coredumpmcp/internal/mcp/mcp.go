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

// Package mcp contains the CLI command for starting the coredump MCP server.
package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	internalmcp "github.com/rusq/coredumpmcp/internal/mcp"
)

//go:embed assets/mcp.md
var mdMCP string

// CmdMCP is the "coredumpmcp mcp" command.
var CmdMCP = &base.Command{
	UsageLine:  "coredumpmcp mcp [flags]",
	Short:      "start the MCP server",
	Long:       mdMCP,
	FlagMask:   cfg.DefaultFlags,
	PrintFlags: true,
	Run:        runMCP,
}

var (
	listenAddr  string
	transport   string
	allowRemove bool
)

func init() {
	CmdMCP.Flag.StringVar(&transport, "transport", string(internalmcp.TransportStdio), "MCP transport: \"stdio\" or \"http\"")
	CmdMCP.Flag.StringVar(&listenAddr, "listen", "127.0.0.1:8484", "address to listen on when -transport=http")
	CmdMCP.Flag.BoolVar(&allowRemove, "allow-remove", false, "enable the remove_coredump tool, that deletes the dumps from the disk")
}

// newServer is the server constructor, replaced in tests.
var newServer = func(opts ...internalmcp.Option) server {
	return internalmcp.New(opts...)
}

type server interface {
	ServeStdio(ctx context.Context) error
	ServeHTTP(ctx context.Context, addr string) error
}

func runMCP(ctx context.Context, cmd *base.Command, args []string) error {
	lg := cfg.Log

	var serve func(context.Context, server) error
	switch internalmcp.Transport(strings.ToLower(transport)) {
	case internalmcp.TransportStdio, "":
		serve = func(ctx context.Context, srv server) error { return srv.ServeStdio(ctx) }
	case internalmcp.TransportHTTP:
		serve = func(ctx context.Context, srv server) error { return srv.ServeHTTP(ctx, listenAddr) }
	default:
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("mcp: unknown transport %q (use \"stdio\" or \"http\")", transport)
	}

	if allowRemove {
		lg.WarnContext(ctx, "mcp: remove_coredump tool is enabled, agents can delete coredumps")
	}
	srv := newServer(
		internalmcp.WithLogger(lg),
		internalmcp.WithInspector(cfg.NewRegistry()),
		internalmcp.WithRemove(allowRemove),
	)
	if err := serve(ctx, srv); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return nil
}
