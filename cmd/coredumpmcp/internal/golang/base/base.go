// Package base defines shared basic pieces of the coredumpmcp command.
//
// The command subsystem is based on golang's `go` command implementation, which
// is BSD-licensed:
//
//	Copyright 2017 The Go Authors. All rights reserved.
//	Use of this source code is governed by a BSD-style
//	license that can be found in the LICENSE file.
package base

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
)

// CmdName is the name of the executable.
const CmdName = "coredumpmcp"

// A Command is an implementation of a coredumpmcp command.
type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(ctx context.Context, cmd *Command, args []string) error

	// UsageLine is the one-line usage message.
	UsageLine string

	// Short is the short description shown in the 'coredumpmcp help' output.
	Short string

	// Long is the long message shown in the 'coredumpmcp help <this-command>'
	// output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet

	// FlagMask is a set of the base flags that the command does not use.
	FlagMask cfg.FlagMask

	// CustomFlags indicates that the command will do its own
	// flag parsing.
	CustomFlags bool

	// PrintFlags indicates that generic help handler should print the
	// flags in the flagset.  Set it to false, if a Long lists all the flags.
	// It only matters for the commands that have no subcommands.
	PrintFlags bool

	// Commands lists the available commands and help topics.
	// The order here is the order in which they are printed by 'coredumpmcp help'.
	Commands []*Command
}

var CoredumpMCP = &Command{
	UsageLine: CmdName,
	Long:      `Coredumpmcp inspects the crash dumps collected by systemd-coredump and serves them to AI agents over MCP.`,
	// Commands initialised in main.
}

var (
	exitStatus = 0
	exitMu     sync.Mutex
)

// SetExitStatus sets the exit status, if it is greater than the current one.
func SetExitStatus(n StatusCode) {
	exitMu.Lock()
	if exitStatus < int(n) {
		exitStatus = int(n)
	}
	exitMu.Unlock()
}

// GetExitStatus returns the current exit status.
func GetExitStatus() int {
	exitMu.Lock()
	defer exitMu.Unlock()
	return exitStatus
}

var atExitFuncs []func()

// AtExit registers a function to be called on Exit.
func AtExit(f func()) {
	atExitFuncs = append(atExitFuncs, f)
}

// Exit runs the registered functions and exits with the exit status.
func Exit() {
	for _, f := range atExitFuncs {
		f()
	}
	os.Exit(GetExitStatus())
}

// Runnable reports whether the command can be run; otherwise
// it is a documentation pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

// LongName returns the command's long name: all the words in the usage line
// between "coredumpmcp" and a flag or argument.
func (c *Command) LongName() string {
	name := c.UsageLine
	if i := strings.Index(name, " ["); i >= 0 {
		name = name[:i]
	}
	if name == CmdName {
		return ""
	}
	return strings.TrimPrefix(name, CmdName+" ")
}

// Name returns the command's short name: the last word in the usage line
// before a flag or argument.
func (c *Command) Name() string {
	name := c.LongName()
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Usage prints the usage of the command and exits.
func (c *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: %s\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "Run '%s help %s' for details.\n", CmdName, c.LongName())
	SetExitStatus(SHelpRequested)
	Exit()
}
