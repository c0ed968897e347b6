// Package cli implements the tradingfloor command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/tradingfloor/config"
	"github.com/hupe1980/tradingfloor/floor"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/logstore"
	"github.com/hupe1980/tradingfloor/market"
	"github.com/spf13/cobra"
)

// ErrCycleFailed is returned by the once command when a trader failed.
var ErrCycleFailed = errors.New("not every trader completed")

func newLogger(cfg *config.Config, w io.Writer) *logging.FloorLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    w,
		Component: "floor",
	})
}

// NewRootCmd creates the root command. Without a subcommand the floor runs
// until interrupted.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "tradingfloor",
		Short:         "Run a floor of autonomous LLM traders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForever(cmd, configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	rootCmd.AddCommand(newOnceCmd(&configPath))
	rootCmd.AddCommand(newLogsCmd(&configPath))
	rootCmd.AddCommand(newStatusCmd(&configPath))

	return rootCmd
}

func runForever(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	app, err := NewApp(cfg, newLogger(cfg, cmd.ErrOrStderr()), func(o *floor.Options) {
		o.OnCycle = func(s floor.Summary) {
			fmt.Fprintln(out, renderBanner(fmt.Sprintf("Trading cycle at %s", s.Started.Format(time.RFC3339))))
			fmt.Fprintln(out, renderSummary(s))
		}
		o.OnSkip = func(time.Time) {
			fmt.Fprintln(out, dimStyle.Render("Market is closed, skipping run"))
		}
	})
	if err != nil {
		return err
	}
	defer app.Close()

	gate := "enabled"
	if cfg.RunWhenClosed {
		gate = "disabled"
	}
	fmt.Fprintln(out, renderBanner("Starting trading floor"))
	fmt.Fprintf(out, "Running every %s\nMarket hours check: %s\nMulti-model mode: %t\n\n", cfg.Interval, gate, cfg.UseManyModels)
	fmt.Fprintf(out, "Created %d traders:\n%s\n", len(app.Traders), renderRoster(app.Traders))

	return app.Floor.RunForever(cmd.Context())
}

func newOnceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single trading cycle and exit",
		Long:  "Run every trader once, ignoring market hours. Exits non-zero unless every trader completed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			app, err := NewApp(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(out, renderBanner(fmt.Sprintf("Single cycle - running %d traders", len(app.Traders))))
			fmt.Fprintln(out, renderRoster(app.Traders))

			s := app.Floor.RunOnce(cmd.Context())
			fmt.Fprintln(out, renderSummary(s))
			if !s.AllSucceeded() {
				return fmt.Errorf("%w: %d/%d failed", ErrCycleFailed, s.Failed(), len(s.Outcomes))
			}
			return nil
		},
	}
}

func newLogsCmd(configPath *string) *cobra.Command {
	var lastN int
	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "Show the most recent log records of a trader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(*configPath)
			if err != nil {
				return err
			}
			sink, err := logstore.OpenGormSink(cfg.DBPath)
			if err != nil {
				return err
			}
			defer sink.Close()

			records, err := sink.Read(cmd.Context(), args[0], lastN)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRecords(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&lastN, "last", "n", logstore.DefaultReadLimit, "number of records to show")
	return cmd
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the market is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(*configPath)
			if err != nil {
				return err
			}
			clock, err := NewClock(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			open, err := clock.IsOpen(cmd.Context(), time.Now())
			switch {
			case err != nil:
				fmt.Fprintln(out, errorStyle.Render("Market status unavailable: "+err.Error()))
			case open:
				fmt.Fprintln(out, completedStyle.Render("Market is open"))
			default:
				fmt.Fprintln(out, dimStyle.Render("Market is closed"))
			}
			if errors.Is(err, market.ErrCalendarUnavailable) {
				fmt.Fprintln(out, dimStyle.Render("The floor treats this as closed."))
			}
			return nil
		},
	}
}

// Execute runs the root command with ctx and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		return 1
	}
	return 0
}
