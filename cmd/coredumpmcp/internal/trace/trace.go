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

// Package trace implements the "coredumpmcp trace" command.
package trace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/registry"
)

var CmdTrace = &base.Command{
	UsageLine:  "coredumpmcp trace [flags] <id>",
	Short:      "print the stack trace of a coredump",
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
	Run:        runTrace,
	Long: `
# Trace Command

Trace runs gdb on the coredump and prints the stack trace of all threads.
The executable that produced the dump must still be on disk.
`,
}

var asJSON bool

func init() {
	CmdTrace.Flag.BoolVar(&asJSON, "json", false, "output the parsed frames in JSON format")
}

type tracer interface {
	StackTrace(ctx context.Context, id string) (*coredump.StackTrace, error)
}

// newTracer is replaced in tests.
var newTracer = func() tracer {
	return cfg.NewRegistry()
}

func runTrace(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("exactly one coredump id is required")
	}
	return printTrace(ctx, os.Stdout, newTracer(), args[0])
}

func printTrace(ctx context.Context, w io.Writer, t tracer, id string) error {
	st, err := t.StackTrace(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound):
			base.SetExitStatus(base.SUserError)
		case errors.Is(err, registry.ErrInvalidParams):
			base.SetExitStatus(base.SInvalidParameters)
		default:
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return st.Format(w)
}
