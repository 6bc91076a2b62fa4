// Command blogbuilder builds a static blog from Markdown posts.
//
// Run it in a project directory (or point -c at the project's config.yaml):
//
//	blogbuilder
//	blogbuilder -c site/config.yaml -v
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, performs one build and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("blogbuilder"),
		kong.Description("Build a static blog from Markdown posts."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	if exitCode >= 0 { // --help or --version
		return exitCode
	}

	logger := config.NewLogger(stderr, config.LogLevel(cli.Verbose))
	slog.SetDefault(logger)

	code := 0
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, logger).
		WithOutput(stderr).
		WithExit(func(c int) { code = c })

	load := config.Load
	if cli.Config == config.DefaultConfigFile {
		load = config.LoadOrDefault
	}
	cfg, err := load(cli.Config)
	if err != nil {
		adapter.HandleError(err)
		return code
	}

	report, err := build.New(cfg).WithLogger(logger).Run(ctx)
	if err != nil {
		adapter.HandleError(err)
		return code
	}
	if report.Outcome == build.OutcomeWarning {
		logger.Warn("Build finished with warnings", slog.Int("issues", len(report.Issues)))
	}
	return 0
}
