package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-circulation/clock"
	"library-circulation/config"
	"library-circulation/desk"
	"library-circulation/journal"
	"library-circulation/library"
	"library-circulation/pkg/log"
)

// app is everything a command needs, built from configuration.
type app struct {
	desk    *desk.Desk
	journal *journal.Journal
	clock   clock.Clock
	l       log.Logger
}

func (a *app) Close() error { return a.journal.Close() }

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	l := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	var clk clock.Clock = clock.NewSystem()
	if !cfg.Clock.FixedNow.IsZero() {
		clk = clock.NewManual(cfg.Clock.FixedNow)
	}

	seed := library.DefaultSeed()
	if cfg.Library.SeedFile != "" {
		s, err := library.LoadSeed(cfg.Library.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = s
	}
	if cfg.Library.Name != "" {
		seed.Name = cfg.Library.Name
	}

	lib, err := library.NewFromSeed(seed, library.WithClock(clk))
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(ctx, cfg.Journal.DSN)
	if err != nil {
		return nil, err
	}

	l.Infof(ctx, "Loaded %s: %d items, %d members (sqlite %s)",
		lib.Name, len(lib.Items()), len(lib.Members()), journal.BuildMode)
	return &app{desk: desk.New(lib, j, l), journal: j, clock: clk, l: l}, nil
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var cfgPath string

	open := func(cmd *cobra.Command) (*app, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		return newApp(cmd.Context(), cfg)
	}

	runConsole := func(cmd *cobra.Command, _ []string) error {
		a, err := open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c := &console{d: a.desk, out: out, prompt: isTerminal(in)}
		if m, ok := a.clock.(*clock.Manual); ok {
			c.clock = m
		}
		c.run(cmd.Context(), in)
		return nil
	}

	root := &cobra.Command{
		Use:           "circulation",
		Short:         "Circulation desk for a small library",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConsole,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ./config/config.yaml or ./config.yaml)")
	root.SetOut(out)

	root.AddCommand(&cobra.Command{
		Use:   "console",
		Short: "Interactive circulation console",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	})

	var (
		asJSON bool
		atRaw  string
	)
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print availability, overdue loans, popular items and stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var at time.Time
			if atRaw != "" {
				t, err := time.Parse(time.RFC3339, atRaw)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				at = t
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r := buildReport(a.desk, at)
			if asJSON {
				return writeReportJSON(out, r)
			}
			writeReportText(out, r)
			return nil
		},
	}
	reportCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	reportCmd.Flags().StringVar(&atRaw, "at", "", "report date (RFC3339), default now")
	root.AddCommand(reportCmd)

	return root
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
