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

// Package info implements the "coredumpmcp info" command.
package info

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/registry"
)

var CmdInfo = &base.Command{
	UsageLine:  "coredumpmcp info [flags] <id> [<id>...]",
	Short:      "show coredump details",
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
	Run:        runInfo,
	Long: `
# Info Command

Info shows the details of one or more coredumps, including the command line
and the host name.  Use the ids printed by "coredumpmcp list".
`,
}

var asJSON bool

func init() {
	CmdInfo.Flag.BoolVar(&asJSON, "json", false, "output in JSON format")
}

// maxWorkers is the number of coredumpctl processes running at once.
const maxWorkers = 4

type detailer interface {
	Detail(ctx context.Context, id string) (coredump.Dump, error)
}

// newDetailer is replaced in tests.
var newDetailer = func() detailer {
	return cfg.NewRegistry()
}

func runInfo(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) == 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("at least one coredump id is required")
	}
	dumps, err := details(ctx, newDetailer(), args)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			base.SetExitStatus(base.SUserError)
		} else {
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dumps)
	}
	return printDetails(os.Stdout, dumps)
}

// details fetches the details of the dumps concurrently.  The result is in
// the order of ids.
func details(ctx context.Context, d detailer, ids []string) ([]coredump.Dump, error) {
	dumps := make([]coredump.Dump, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, id := range ids {
		g.Go(func() error {
			dump, err := d.Detail(ctx, id)
			if err != nil {
				return err
			}
			dumps[i] = dump
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dumps, nil
}

func printDetails(w io.Writer, dumps []coredump.Dump) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for i, d := range dumps {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		rows := [][2]string{
			{"ID", d.ID},
			{"PID", d.PID},
			{"UID", d.UID},
			{"GID", d.GID},
			{"Signal", d.Signal},
			{"Timestamp", d.Timestamp},
			{"Command Line", d.CommandLine},
			{"Executable", d.Executable},
			{"Hostname", d.Hostname},
			{"Unit", d.Unit},
			{"Corefile", d.Corefile},
			{"Storage", d.Storage},
			{"Extracted", d.ExtractedPath},
		}
		for _, r := range rows {
			if r[1] == "" {
				continue
			}
			fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
		}
	}
	return tw.Flush()
}
