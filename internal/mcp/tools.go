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

// In this file: MCP tool definitions and handler implementations.

import (
	"context"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/registry"
)

// toolErr wraps the registry error for the tool result.  Not found errors
// get a hint to refresh the list.
func toolErr(tool string, err error) *mcplib.CallToolResult {
	if errors.Is(err, registry.ErrNotFound) {
		return resultErr(fmt.Errorf("%s: %w (call list_coredumps to see the available dumps)", tool, err))
	}
	return resultErr(fmt.Errorf("%s: %w", tool, err))
}

// ─── list_coredumps ───────────────────────────────────────────────────────────

func (s *Server) toolListCoredumps() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_coredumps",
		mcplib.WithDescription(`List the crash dumps collected by systemd-coredump on this machine.

Returns the dump id, pid, uid, gid, signal, timestamp, corefile status and the
executable path of each dump, in the order coredumpctl lists them (oldest
first).  The list is refreshed on every call.`),
		mcplib.WithBoolean("only_present",
			mcplib.Description("Return only the dumps whose corefile is still present on disk (default false)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListCoredumps}
}

func (s *Server) handleListCoredumps(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	onlyPresent := boolArg(req, "only_present", false)

	dumps, err := s.insp.Refresh(ctx, onlyPresent)
	if err != nil {
		return toolErr("list_coredumps", err), nil
	}
	s.logger.DebugContext(ctx, "mcp: list_coredumps", "count", len(dumps), "only_present", onlyPresent)
	if dumps == nil {
		dumps = []coredump.Dump{}
	}

	result, err := resultJSON(dumps)
	if err != nil {
		return resultErr(fmt.Errorf("list_coredumps: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get_coredump_info ────────────────────────────────────────────────────────

func (s *Server) toolGetCoredumpInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_coredump_info",
		mcplib.WithDescription("Get detailed information about a crash dump by its id, including the command line and the hostname."),
		mcplib.WithString("id",
			mcplib.Description(`The dump id as returned by list_coredumps (e.g. "Sat 2023-06-17 01:50:45 JST-2465")`),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetCoredumpInfo}
}

func (s *Server) handleGetCoredumpInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok || id == "" {
		return resultErr(fmt.Errorf("get_coredump_info: %w: id is required", registry.ErrInvalidParams)), nil
	}

	d, err := s.insp.Detail(ctx, id)
	if err != nil {
		return toolErr("get_coredump_info", err), nil
	}

	result, err := resultJSON(d)
	if err != nil {
		return resultErr(fmt.Errorf("get_coredump_info: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── extract_coredump ─────────────────────────────────────────────────────────

func (s *Server) toolExtractCoredump() mcpsrv.ServerTool {
	tool := mcplib.NewTool("extract_coredump",
		mcplib.WithDescription(`Extract a crash dump to a file on this machine.

The directory of the output path must exist.  An existing file is overwritten.
Once extracted, get_stack_trace uses the extracted file instead of extracting
the dump again.`),
		mcplib.WithString("id",
			mcplib.Description("The dump id as returned by list_coredumps"),
			mcplib.Required(),
		),
		mcplib.WithString("output_path",
			mcplib.Description("Filesystem path to write the dump to (e.g. /tmp/app.core)"),
			mcplib.Required(),
		),
		mcplib.WithDestructiveHintAnnotation(false),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleExtractCoredump}
}

func (s *Server) handleExtractCoredump(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok || id == "" {
		return resultErr(fmt.Errorf("extract_coredump: %w: id is required", registry.ErrInvalidParams)), nil
	}
	dst, ok := stringArg(req, "output_path")
	if !ok || dst == "" {
		return resultErr(fmt.Errorf("extract_coredump: %w: output_path is required", registry.ErrInvalidParams)), nil
	}

	s.logger.InfoContext(ctx, "mcp: extract_coredump", "id", id, "output_path", dst)
	path, err := s.insp.Extract(ctx, id, dst)
	if err != nil {
		return toolErr("extract_coredump", err), nil
	}
	return resultText(fmt.Sprintf("Coredump %q extracted to %s", id, path)), nil
}

// ─── get_stack_trace ──────────────────────────────────────────────────────────

func (s *Server) toolGetStackTrace() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_stack_trace",
		mcplib.WithDescription(`Get the stack trace of all threads of a crash dump.

The dump is analysed with gdb every time this tool is called.  Frames include
the address, function, arguments and the source location when debug symbols
are available.`),
		mcplib.WithString("id",
			mcplib.Description("The dump id as returned by list_coredumps"),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetStackTrace}
}

func (s *Server) handleGetStackTrace(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok || id == "" {
		return resultErr(fmt.Errorf("get_stack_trace: %w: id is required", registry.ErrInvalidParams)), nil
	}

	st, err := s.insp.StackTrace(ctx, id)
	if err != nil {
		return toolErr("get_stack_trace", err), nil
	}
	return resultText(st.String()), nil
}

// ─── get_coredump_config ──────────────────────────────────────────────────────

func (s *Server) toolGetCoredumpConfig() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_coredump_config",
		mcplib.WithDescription(`Get the coredump configuration: the kernel core pattern, the core size limit,
whether the dumps are handled by systemd-coredump, and whether the dumps are
generated at all.`),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetCoredumpConfig}
}

func (s *Server) handleGetCoredumpConfig(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	cfg, err := s.insp.Config(ctx)
	if err != nil {
		return toolErr("get_coredump_config", err), nil
	}
	result, err := resultJSON(cfg)
	if err != nil {
		return resultErr(fmt.Errorf("get_coredump_config: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── set_coredump_config ──────────────────────────────────────────────────────

func (s *Server) toolSetCoredumpConfig() mcpsrv.ServerTool {
	tool := mcplib.NewTool("set_coredump_config",
		mcplib.WithDescription(`Enable or disable the coredump generation by changing the core size limit.

The change only affects the processes started by this server, the system
configuration is not changed.`),
		mcplib.WithBoolean("enabled",
			mcplib.Description("true to enable the coredump generation, false to disable it"),
			mcplib.Required(),
		),
		mcplib.WithIdempotentHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSetCoredumpConfig}
}

func (s *Server) handleSetCoredumpConfig(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	enabled, ok := requiredBool(req, "enabled")
	if !ok {
		return resultErr(fmt.Errorf("set_coredump_config: %w: enabled is required", registry.ErrInvalidParams)), nil
	}

	s.logger.InfoContext(ctx, "mcp: set_coredump_config", "enabled", enabled)
	matched, err := s.insp.SetConfig(ctx, enabled)
	if err != nil {
		return toolErr("set_coredump_config", err), nil
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if !matched {
		return resultText(fmt.Sprintf("Coredump generation could not be %s; check get_coredump_config for the current state.", state)), nil
	}
	return resultText(fmt.Sprintf("Coredump generation %s for this process tree.", state)), nil
}

// ─── remove_coredump ──────────────────────────────────────────────────────────

func (s *Server) toolRemoveCoredump() mcpsrv.ServerTool {
	tool := mcplib.NewTool("remove_coredump",
		mcplib.WithDescription("Delete the corefile of a crash dump from the disk.  This can't be undone."),
		mcplib.WithString("id",
			mcplib.Description("The dump id as returned by list_coredumps"),
			mcplib.Required(),
		),
		mcplib.WithDestructiveHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleRemoveCoredump}
}

func (s *Server) handleRemoveCoredump(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok || id == "" {
		return resultErr(fmt.Errorf("remove_coredump: %w: id is required", registry.ErrInvalidParams)), nil
	}

	s.logger.InfoContext(ctx, "mcp: remove_coredump", "id", id)
	if _, err := s.insp.Remove(ctx, id); err != nil {
		return toolErr("remove_coredump", err), nil
	}
	return resultText(fmt.Sprintf("Coredump %q removed.", id)), nil
}
