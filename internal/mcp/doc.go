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

// Package mcp implements a Model Context Protocol (MCP) server that exposes
// the systemd-coredump crash dumps of the local machine to AI agents.  Agents
// can list the dumps, read their details, extract them, get the stack traces
// and check or change whether the dumps are generated at all.
//
// Dumps are also available as resources:
//   - coredump://dumps               – the JSON list of known dumps.
//   - coredump://dumps/{id}          – the JSON details of a single dump.
//   - coredump://stacktrace/{id}     – the formatted stack trace of a dump.
//
// Dump ids contain spaces and colons, and must be percent-encoded in the
// resource URIs.
//
// Transport: the server supports two transports selectable at runtime:
//   - stdio  – standard MCP stdio transport (default); suitable for local
//     agent integration (desktop assistants, IDE plugins).
//   - http   – Streamable HTTP transport; suitable for remote agents or when
//     multiple concurrent clients are needed.
package mcp
