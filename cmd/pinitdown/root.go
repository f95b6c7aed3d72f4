package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pinitdown/pkg/config"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile    string
	logLevel      string
	logFile       string
	noColor       bool
	notifications bool
	verbose       bool
}

// usageError marks invocation mistakes, reported once with exit code 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// errLinksFailed is returned when at least one link of a batch failed
var errLinksFailed = errors.New("some links could not be downloaded")

// isTerminal reports whether f is attached to a terminal
var isTerminal = func(f interface{ Fd() uintptr }) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	d := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "pinitdown [links...]",
		Short: "Download the best image or video from Pinterest pins",
		Long: `pinitdown saves the highest quality image or video of each Pinterest pin
link it is given.

Links can be passed as arguments, read from a file with --file (use - for
stdin), or entered in the interactive menu that opens when pinitdown runs in
a terminal without arguments.

Every link is processed on its own: a failing link is reported and the rest
of the batch continues.`,
		Example: `  # Download a single pin
  pinitdown https://www.pinterest.com/pin/123456789/

  # Download every link in a file into ./pins, four at a time
  pinitdown download --file links.txt --output ./pins --concurrent 4

  # Read links from stdin and write a YAML report
  cat links.txt | pinitdown download --file - --report report.yaml

  # Open the interactive menu
  pinitdown interactive`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 || d.file != "" {
				return runDownload(cmd, g, d, args)
			}
			if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
				return runInteractive(cmd, g, d)
			}
			return newUsageError("no links given; pass links as arguments or use --file")
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "config file (default is $HOME/.config/pinitdown/config.yaml)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "also write logs to this file")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVar(&g.notifications, "notifications", true, "enable desktop notifications")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "print one line per link instead of a progress bar")

	// download flags also live on the root so `pinitdown <links>` accepts them
	addDownloadFlags(cmd, d)

	cmd.SetVersionTemplate(`pinitdown {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	cmd.AddCommand(newDownloadCmd(g))
	cmd.AddCommand(newInteractiveCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, newRootCmd(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	defer logger.Close()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var usage *usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'pinitdown --help' for usage.")
		return exitUsage
	case errors.Is(err, errLinksFailed):
		return exitFailure
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}

// loadConfig builds the configuration from file, environment and the flags
// the user actually set on cmd
func loadConfig(cmd *cobra.Command, g *globalOptions, d *downloadOptions) (*config.Config, error) {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if fs.Changed("log-level") {
		flags["log-level"] = g.logLevel
	}
	if fs.Changed("log-file") {
		flags["log-file"] = g.logFile
	}
	if fs.Changed("no-color") {
		flags["no-color"] = g.noColor
	}
	if d != nil {
		if fs.Changed("output") {
			flags["output"] = d.output
		}
		if fs.Changed("concurrent") {
			flags["concurrent"] = d.concurrent
		}
		if fs.Changed("insecure") {
			flags["insecure"] = d.insecure
		}
	}

	cfg, err := config.Load(g.configFile, flags)
	if err != nil {
		return nil, err
	}
	if fs.Changed("notifications") {
		cfg.UI.Notifications = g.notifications
	}
	return cfg, nil
}

// setup applies the logging and color settings of cfg
func setup(cfg *config.Config) error {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	ui.SetColor(cfg.UI.Color && isTerminal(os.Stdout))
	logger.WithField("version", version).Debug("pinitdown starting")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pinitdown %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n  built:  %s\n  go:     %s\n", gitCommit, buildDate, runtime.Version())
		},
	}
}
