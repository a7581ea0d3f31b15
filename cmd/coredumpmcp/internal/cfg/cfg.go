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

// Package cfg contains common configuration variables.
package cfg

import (
	"flag"
	"log/slog"
	"os"

	"github.com/rusq/osenv/v2"
)

var (
	TraceFile   string
	LogFile     string
	JSONHandler bool
	Verbose     bool

	ConfigFile string
	Tools      = DefTools

	// Log is the logger for the commands.  It is set in main after the
	// logging is initialised.
	Log = slog.Default()
)

type FlagMask uint16

const (
	DefaultFlags   FlagMask = 0
	OmitToolsFlags FlagMask = 1 << iota
	OmitConfigFlag
)

// SetBaseFlags sets base flags.
func SetBaseFlags(fs *flag.FlagSet, mask FlagMask) {
	fs.StringVar(&TraceFile, "trace", os.Getenv("TRACE_FILE"), "trace `filename`")
	fs.StringVar(&LogFile, "log", os.Getenv("LOG_FILE"), "log `file`, if not specified, messages are printed to STDERR")
	fs.BoolVar(&JSONHandler, "log-json", osenv.Value("JSON_LOG", false), "log messages in JSON format")
	fs.BoolVar(&Verbose, "v", osenv.Value("DEBUG", false), "verbose messages")

	if mask&OmitToolsFlags == 0 {
		fs.StringVar(&Tools.Coredumpctl, "coredumpctl", osenv.Value("COREDUMPCTL", DefTools.Coredumpctl), "coredumpctl `executable`")
		fs.StringVar(&Tools.GDB, "gdb", osenv.Value("GDB", DefTools.GDB), "gdb `executable`")
		fs.StringVar(&Tools.CorePatternFile, "core-pattern-file", osenv.Value("CORE_PATTERN_FILE", DefTools.CorePatternFile), "kernel core pattern `file`")
		fs.StringVar(&Tools.TempDir, "tmpdir", osenv.Value("COREDUMP_TMPDIR", DefTools.TempDir), "`directory` for the temporary files (default: system temporary directory)")
		fs.StringVar(&Tools.ListFormat, "list-format", osenv.Value("LIST_FORMAT", DefTools.ListFormat), "coredumpctl listing `format`: auto, json or text")
	}
	if mask&OmitConfigFlag == 0 {
		fs.StringVar(&ConfigFile, "config", osenv.Value("COREDUMPMCP_CONFIG", ""), "TOML configuration `file` with the tool paths overrides")
	}
}

// SetDebugLevel sets the level of the default logger to debug.
func SetDebugLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
