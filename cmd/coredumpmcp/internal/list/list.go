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

// Package list implements the "coredumpmcp list" command.
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	"github.com/rusq/coredumpmcp/internal/coredump"
)

var CmdList = &base.Command{
	UsageLine:  "coredumpmcp list [flags]",
	Short:      "list coredumps",
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
	Run:        runList,
	Long: `
# List Command

List prints the coredumps collected by systemd-coredump, oldest first.  The
dump id shown in the first column is the one that MCP tools expect.
`,
}

var (
	onlyPresent bool
	asJSON      bool
)

func init() {
	CmdList.Flag.BoolVar(&onlyPresent, "present", false, "list only the coredumps that are present on disk")
	CmdList.Flag.BoolVar(&asJSON, "json", false, "output the list in JSON format")
}

type refresher interface {
	Refresh(ctx context.Context, onlyPresent bool) ([]coredump.Dump, error)
}

// newRefresher is replaced in tests.
var newRefresher = func() refresher {
	return cfg.NewRegistry()
}

func runList(ctx context.Context, cmd *base.Command, args []string) error {
	dumps, err := newRefresher().Refresh(ctx, onlyPresent)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dumps)
	}
	return printDumps(os.Stdout, dumps, time.Now())
}

var statusColor = map[string]*color.Color{
	coredump.StatusPresent:      color.New(color.FgGreen),
	coredump.StatusMissing:      color.New(color.FgHiBlack),
	coredump.StatusInaccessible: color.New(color.FgYellow),
	coredump.StatusError:        color.New(color.FgRed),
	coredump.StatusTruncated:    color.New(color.FgYellow),
}

func colorStatus(status string) string {
	if c, ok := statusColor[status]; ok {
		return c.Sprint(status)
	}
	return status
}

// age returns the human readable age of the dump relative to now.
func age(d coredump.Dump, now time.Time) string {
	if d.Time.IsZero() {
		return "-"
	}
	return humanize.RelTime(d.Time, now, "ago", "from now")
}

// printDumps prints the table of dumps.  The corefile status is the last
// column, so that the colour codes don't break the alignment.
func printDumps(w io.Writer, dumps []coredump.Dump, now time.Time) error {
	if len(dumps) == 0 {
		_, err := fmt.Fprintln(w, "No coredumps found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIG\tUID\tAGE\tEXE\tCOREFILE")
	for _, d := range dumps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Signal, d.UID, age(d, now), d.Executable, colorStatus(d.Corefile))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s coredumps\n", humanize.Comma(int64(len(dumps))))
	return err
}
