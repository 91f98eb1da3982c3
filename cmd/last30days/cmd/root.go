// Package cmd provides the CLI commands for last30days.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/app"
	"github.com/zkaiera/last30days-skill/internal/config"
	"github.com/zkaiera/last30days-skill/internal/domain"
	logpkg "github.com/zkaiera/last30days-skill/internal/logger"
	"github.com/zkaiera/last30days-skill/internal/render"
	"github.com/zkaiera/last30days-skill/internal/usecase/pipeline"
	"github.com/zkaiera/last30days-skill/internal/version"
)

// cliEnv is the logger and config environment used when ENV is unset.
const cliEnv = "cli"

type researchFlags struct {
	sources    string
	quick      bool
	deep       bool
	days       int
	mock       bool
	emit       string
	includeWeb bool
	debug      bool
}

// NewRootCmd creates the root command. With a topic it runs one research pass.
func NewRootCmd() *cobra.Command {
	var f researchFlags

	cmd := &cobra.Command{
		Use:   "last30days <topic>",
		Short: "Research what people said about a topic in the last 30 days",
		Long: `last30days searches Reddit (through OpenAI web search) and X (through
xAI or the local bird CLI) for recent discussion of a topic, scores and
deduplicates what it finds, and prints a compact report.

Keys are read from OPENAI_API_KEY and XAI_API_KEY or from
~/.config/last30days/.env.`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearch(cmd, strings.Join(args, " "), f)
		},
	}

	cmd.SetVersionTemplate("last30days version {{.Version}}\n")

	cmd.Flags().StringVar(&f.sources, "sources", "auto", "Sources: auto, reddit, x, both, all, web, reddit-web, x-web")
	cmd.Flags().BoolVar(&f.quick, "quick", false, "Faster research with fewer sources "+depthTargets(domain.DepthQuick))
	cmd.Flags().BoolVar(&f.deep, "deep", false, "Comprehensive research with more sources "+depthTargets(domain.DepthDeep))
	cmd.Flags().IntVar(&f.days, "days", 0, "Number of days to look back (1-30, default: 30)")
	cmd.Flags().BoolVar(&f.mock, "mock", false, "Use bundled fixtures instead of the network")
	cmd.Flags().StringVar(&f.emit, "emit", render.EmitCompact, "Output format: compact, json")
	cmd.Flags().BoolVar(&f.includeWeb, "include-web", false, "Include general web search alongside Reddit/X")
	cmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable verbose debug logging")

	cmd.AddCommand(newServeCmd(&f.debug))
	cmd.AddCommand(newStatusCmd(&f.debug))

	return cmd
}

// depthTargets describes the per-provider item targets of d for flag help.
func depthTargets(d domain.Depth) string {
	r, x := d.RedditTarget(), d.XTarget()
	return fmt.Sprintf("(%d-%d Reddit, %d-%d X)", r.Min, r.Max, x.Min, x.Max)
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func runResearch(cmd *cobra.Command, topic string, f researchFlags) error {
	depth := domain.DepthDefault
	switch {
	case f.quick && f.deep:
		return domain.ErrConflictingDepth
	case f.quick:
		depth = domain.DepthQuick
	case f.deep:
		depth = domain.DepthDeep
	}
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("%w: usage: last30days <topic> [flags]", domain.ErrEmptyTopic)
	}
	if f.emit != render.EmitCompact && f.emit != render.EmitJSON {
		return fmt.Errorf("unknown --emit %q: want compact or json", f.emit)
	}

	env := cliEnvironment()
	cfg, err := config.LoadOrEnv(env)
	if err != nil {
		return err
	}
	logger, err := newCLILogger(env, cfg, f.debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	days := f.days
	if days == 0 {
		days = cfg.Search.Days
	}

	ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
	a, err := app.New(ctx, cfg, logger, app.Options{Mock: f.mock, ProbeBird: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Runner.Run(ctx, pipeline.Request{
		Topic:      topic,
		Sources:    f.sources,
		Days:       days,
		Depth:      depth,
		IncludeWeb: f.includeWeb,
		Mock:       f.mock,
	})
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()
	if out.Note != "" {
		fmt.Fprintf(stderr, "Note: %s\n", out.Note)
	}
	if !f.mock {
		if err := render.MissingKeysHint(stderr, out.Missing, render.StylesFor(stderr)); err != nil {
			return err
		}
	}

	switch f.emit {
	case render.EmitJSON:
		err = render.JSON(stdout, out.Report)
	default:
		err = render.Compact(stdout, out.Report, out.Missing, render.StylesFor(stdout))
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if out.Report.WebNeeded {
		return render.WebSearchInstructions(stdout, out.Report.Topic, out.Report.RangeFrom, out.Report.RangeTo, out.Days)
	}
	return nil
}

// cliEnvironment returns ENV when set. Otherwise the CLI reads its
// configuration from the environment and the .env file.
func cliEnvironment() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return cliEnv
}

func newCLILogger(env string, cfg config.Config, debug bool) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(loggerEnv(env), level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// loggerEnv maps config environments without a logger profile onto the quiet CLI one.
func loggerEnv(env string) string {
	switch env {
	case "prod", "local", "dev", "docker":
		return env
	default:
		return cliEnv
	}
}

// ExitCode maps an Execute error to a process exit code: 2 for invalid
// input, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrEmptyTopic),
		errors.Is(err, domain.ErrConflictingDepth),
		errors.Is(err, domain.ErrInvalidSources),
		errors.Is(err, domain.ErrInvalidDays):
		return 2
	default:
		return 1
	}
}
