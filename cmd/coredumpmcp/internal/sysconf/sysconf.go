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

// Package sysconf implements the "coredumpmcp config" command.
package sysconf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	"github.com/rusq/coredumpmcp/internal/registry"
)

var CmdConfig = &base.Command{
	UsageLine:  "coredumpmcp config [flags] [on|off]",
	Short:      "show or change the coredump configuration",
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
	Run:        runConfig,
	Long: `
# Config Command

Without arguments, config shows the kernel core pattern, the core size limit
and whether the coredumps are handled by systemd-coredump.

With "on" or "off", it changes the core size limit.  The change only affects
this process and the processes it starts; the system configuration is not
changed.
`,
}

type configurer interface {
	Config(ctx context.Context) (registry.Config, error)
	SetConfig(ctx context.Context, enabled bool) (bool, error)
}

// newConfigurer is replaced in tests.
var newConfigurer = func() configurer {
	return cfg.NewRegistry()
}

func runConfig(ctx context.Context, cmd *base.Command, args []string) error {
	c := newConfigurer()
	if len(args) > 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("too many arguments: %v", args)
	}
	if len(args) == 1 {
		enabled, err := parseSwitch(args[0])
		if err != nil {
			base.SetExitStatus(base.SInvalidParameters)
			return err
		}
		ok, err := c.SetConfig(ctx, enabled)
		if err != nil {
			base.SetExitStatus(base.SApplicationError)
			return err
		}
		if !ok {
			cfg.Log.WarnContext(ctx, "core size limit did not change as requested", "enabled", enabled)
		}
	}
	sc, err := c.Config(ctx)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return printConfig(os.Stdout, sc)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "enable", "true", "1":
		return true, nil
	case "off", "disable", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid argument %q, expected \"on\" or \"off\"", s)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printConfig(w io.Writer, c registry.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Enabled:\t%s\n", yesNo(c.Enabled))
	fmt.Fprintf(tw, "Core pattern:\t%s\n", c.CorePattern)
	fmt.Fprintf(tw, "Core size limit:\t%s\n", c.CoreSizeLimit)
	fmt.Fprintf(tw, "systemd-coredump:\t%s\n", yesNo(c.SystemdHandled))
	return tw.Flush()
}
