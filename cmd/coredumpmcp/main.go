package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/cfg"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/base"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/golang/help"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/info"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/list"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/mcp"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/sysconf"
	"github.com/rusq/coredumpmcp/cmd/coredumpmcp/internal/trace"
	"github.com/rusq/coredumpmcp/internal/osext"
)

// secrets defines the names of the supported secret files that we load our
// environment from.
var secrets = []string{".env", ".env.txt"}

func init() {
	base.CoredumpMCP.Commands = []*base.Command{
		mcp.CmdMCP,
		list.CmdList,
		info.CmdInfo,
		trace.CmdTrace,
		sysconf.CmdConfig,
		CmdVersion,
	}
}

func main() {
	loadSecrets(secrets)

	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	if args[0] == "help" {
		help.Help(os.Stdout, args[1:])
		base.Exit()
	}

	cmd, cmdArgs := findCommand(base.CoredumpMCP, args)
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "%s %s: unknown command\nRun '%s help' for usage.\n", base.CmdName, strings.Join(args, " "), base.CmdName)
		base.SetExitStatus(base.SInvalidParameters)
		base.Exit()
	}
	if !cmd.Runnable() {
		help.Help(os.Stdout, args)
		base.Exit()
	}

	if err := invoke(cmd, cmdArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			base.SetExitStatus(base.SHelpRequested)
		} else {
			base.SetExitStatus(base.SGenericError)
			slog.Error(cmd.Name(), "error", err)
		}
	}
	base.Exit()
}

func usage() {
	help.PrintUsage(os.Stderr, base.CoredumpMCP)
	base.SetExitStatus(base.SHelpRequested)
	base.Exit()
}

// findCommand walks the command tree following args and returns the command
// and the remaining arguments.  It returns nil if the first argument is not a
// known command.
func findCommand(root *base.Command, args []string) (*base.Command, []string) {
	cmd := root
	for len(args) > 0 {
		var next *base.Command
		for _, sub := range cmd.Commands {
			if sub.Name() == args[0] {
				next = sub
				break
			}
		}
		if next == nil {
			break
		}
		cmd, args = next, args[1:]
	}
	if cmd == root {
		return nil, args
	}
	return cmd, args
}

// invoke parses the command flags, initialises the logging, tracing and
// configuration, and runs the command.
func invoke(cmd *base.Command, args []string) error {
	if !cmd.CustomFlags {
		cmd.Flag.Init(cmd.Name(), flag.ContinueOnError)
		cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
		cmd.Flag.Usage = func() {
			fmt.Fprintf(cmd.Flag.Output(), "usage: %s\n", cmd.UsageLine)
			cmd.Flag.PrintDefaults()
		}
		if err := cmd.Flag.Parse(args); err != nil {
			return err
		}
		args = cmd.Flag.Args()
	}

	lg, err := initLog(cfg.LogFile, cfg.JSONHandler, cfg.Verbose)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	cfg.Log = lg

	if err := loadConfig(cfg.ConfigFile, &cfg.Tools, &cmd.Flag); err != nil {
		if osext.IsPathError(err) {
			base.SetExitStatus(base.SUserError)
		} else {
			base.SetExitStatus(base.SInvalidParameters)
		}
		return err
	}

	stop := initTrace(cfg.TraceFile)
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return cmd.Run(ctx, cmd, args)
}

// loadConfig loads the tools configuration file, if given, and validates the
// resulting configuration.  Flags set explicitly in fs take precedence over
// the file, which takes precedence over the environment and the defaults.
func loadConfig(filename string, tools *cfg.ToolsConfig, fs *flag.FlagSet) error {
	if filename == "" {
		return tools.Validate()
	}
	explicit := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
	}
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	if err := tools.Decode(f); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return fmt.Errorf("config: flag -%s: %w", name, err)
		}
	}
	return tools.Validate()
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
