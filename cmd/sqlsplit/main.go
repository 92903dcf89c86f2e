package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cybertec-postgresql/sqlsplit/internal/cli"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

const usage = "Usage: sqlsplit <input-path> <max-output-bytes> [progress-bar-width]"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

// app carries the output streams into the command actions
type app struct {
	stdout io.Writer
}

func newApp(stdout, stderr io.Writer) *urfavecli.Command {
	a := &app{stdout: stdout}

	return &urfavecli.Command{
		Name:         "sqlsplit",
		Usage:        "Split SQL dump files into size-bounded chunks on statement boundaries",
		UsageText:    "sqlsplit [options] <input-path> <max-output-bytes> [progress-bar-width]",
		Version:      version,
		Writer:       stdout,
		ErrWriter:    stderr,
		Action:       a.splitCommand,
		OnUsageError: a.usageError,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:  "config",
				Usage: "YAML config file; flags override its values",
			},
			&urfavecli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for chunk files",
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug output",
			},
			&urfavecli.IntFlag{
				Name:  "max-statement-size",
				Usage: "Abort when a single statement grows past this many bytes without a terminator (default: 1 GiB or the chunk size, whichever is larger)",
			},
			&urfavecli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not draw the progress bar",
			},
			&urfavecli.BoolFlag{
				Name:  "atomic",
				Usage: "Write each chunk to a temp file and rename it into place",
			},
			&urfavecli.StringFlag{
				Name:  "manifest",
				Usage: "Manifest path: written by a split, checked by verify",
			},
			&urfavecli.StringFlag{
				Name:  "manifest-format",
				Usage: "Manifest format (json or text)",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:         "verify",
				Usage:        "Check that existing chunks reproduce the input and split on statement boundaries",
				ArgsUsage:    "<input-path> [max-output-bytes]",
				Action:       a.verifyCommand,
				OnUsageError: a.usageError,
			},
			{
				Name:         "load",
				Usage:        "Execute existing chunks against PostgreSQL in order",
				ArgsUsage:    "<input-path>",
				Action:       a.loadCommand,
				OnUsageError: a.usageError,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format). Supports standard PG* environment variables.",
					},
					&urfavecli.BoolFlag{
						Name:  "single-transaction",
						Usage: "Load all chunks in one transaction",
					},
				},
			},
		},
	}
}

func (a *app) usageError(ctx context.Context, cmd *urfavecli.Command, err error, isSubcommand bool) error {
	fmt.Fprintln(a.stdout, usage)
	return errors.NewUsageError("%v", err)
}

// loadConfig reads --config and applies the flags shared by all commands
func loadConfig(cmd *urfavecli.Command, flags cli.Flags) (*cli.Config, error) {
	config, err := cli.LoadConfigFile(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	flags.OutputDir = cmd.String("output-dir")
	flags.Verbose = cmd.Bool("verbose")
	cli.ApplyFlagsToConfig(config, flags)

	logger.SetVerbose(config.Verbose)
	return config, nil
}

func parseSize(name, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &cli.ConfigError{
			Field:      name,
			Value:      value,
			Message:    fmt.Sprintf("%s must be an integer, got %q", name, value),
			Suggestion: "Pass the size in bytes, e.g. 104857600 for 100 MiB.",
		}
	}
	return n, nil
}

// splitCommand handles 'sqlsplit <input-path> <max-output-bytes> [progress-bar-width]'
func (a *app) splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 || args.Len() > 3 {
		fmt.Fprintln(a.stdout, usage)
		return errors.NewUsageError("expected 2 or 3 arguments, got %d", args.Len())
	}

	maxBytes, err := parseSize("max-output-bytes", args.Get(1))
	if err != nil {
		return err
	}

	flags := cli.Flags{
		MaxChunkSize:     maxBytes,
		MaxStatementSize: cmd.Int("max-statement-size"),
		NoProgress:       cmd.Bool("no-progress"),
		Atomic:           cmd.Bool("atomic"),
		Manifest:         cmd.String("manifest"),
		Format:           cmd.String("manifest-format"),
	}
	if args.Len() == 3 {
		width, err := strconv.Atoi(args.Get(2))
		if err != nil {
			return &cli.ConfigError{
				Field:      "progress-bar-width",
				Value:      args.Get(2),
				Message:    fmt.Sprintf("progress bar width must be an integer, got %q", args.Get(2)),
				Suggestion: "Omit the width to size the bar from the terminal.",
			}
		}
		flags.ProgressWidth = width
	}

	config, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := cli.ValidateSplit(config); err != nil {
		return err
	}

	return cli.Split(config, args.Get(0), a.stdout)
}

// verifyCommand handles 'sqlsplit verify <input-path> [max-output-bytes]'
func (a *app) verifyCommand(ctx context.Context, cmd *urfavecli.Command) error {
	args := cmd.Args()
	if args.Len() < 1 || args.Len() > 2 {
		fmt.Fprintln(a.stdout, "Usage: sqlsplit verify <input-path> [max-output-bytes]")
		return errors.NewUsageError("expected 1 or 2 arguments, got %d", args.Len())
	}

	flags := cli.Flags{Manifest: cmd.String("manifest")}
	if args.Len() == 2 {
		maxBytes, err := parseSize("max-output-bytes", args.Get(1))
		if err != nil {
			return err
		}
		flags.MaxChunkSize = maxBytes
	}

	config, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if config.MaxChunkSize != 0 {
		if err := config.Validate(); err != nil {
			return err
		}
	}

	return cli.Verify(ctx, config, args.Get(0), a.stdout)
}

// loadCommand handles 'sqlsplit load <input-path>'
func (a *app) loadCommand(ctx context.Context, cmd *urfavecli.Command) error {
	args := cmd.Args()
	if args.Len() != 1 {
		fmt.Fprintln(a.stdout, "Usage: sqlsplit load [--connection <conn>] <input-path>")
		return errors.NewUsageError("expected 1 argument, got %d", args.Len())
	}

	config, err := loadConfig(cmd, cli.Flags{
		Connection:        cmd.String("connection"),
		SingleTransaction: cmd.Bool("single-transaction"),
	})
	if err != nil {
		return err
	}
	if err := config.ValidateLoad(); err != nil {
		return err
	}

	return cli.Load(ctx, config, args.Get(0), a.stdout)
}
