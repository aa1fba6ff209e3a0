package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"searchable/internal/config"
	"searchable/internal/discovery"
	"searchable/internal/domain"
	"searchable/internal/eventbus"
	"searchable/internal/logging"
	"searchable/internal/scheduler"
	"searchable/internal/searchable"
	"searchable/internal/ui"
	"searchable/internal/watch"
)

// cliOptions holds the command line flags
type cliOptions struct {
	query         string
	noDebounce    bool
	debounceMs    int
	configPath    string
	stdin         bool
	watch         bool
	logFile       string
	logLevel      string
	caseSensitive bool
	print         bool
	writeConfig   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&cliOptions{})
}

// newRootCmdWith builds the root command with its flags bound to opts
func newRootCmdWith(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchable [dir...]",
		Short: "Interactively filter files and print the chosen path",
		Long: `searchable scans the given directories (default: the current one) and
opens a live filter over the files it found. The list narrows as you type.
Enter prints the chosen path to stdout.

A query of the form name:value matches only that field (name, path, rel).

Examples:
  # Pick a file below the current directory
  vim "$(searchable)"

  # Filter newline-separated candidates from another command
  git ls-files | searchable --stdin

  # Print matches without the interactive UI
  searchable --print -q model.go ./internal`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.query, "query", "q", "", "Initial query")
	flags.BoolVar(&opts.noDebounce, "no-debounce", false, "Filter on every keystroke")
	flags.IntVar(&opts.debounceMs, "debounce-ms", 0, "Debounce window in milliseconds (0 for the default)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default is "+config.FileName+" in the first directory)")
	flags.BoolVar(&opts.stdin, "stdin", false, "Read candidates from stdin, one per line")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Rescan when files change")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file (default is "+logging.FileName+" in the user cache directory)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flags.BoolVar(&opts.caseSensitive, "case-sensitive", false, "Match case")
	flags.BoolVarP(&opts.print, "print", "p", false, "Print matches for the query and exit")
	flags.BoolVar(&opts.writeConfig, "write-config", false, "Write the effective config file and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *cliOptions) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	baseDir, err := filepath.Abs(roots[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	logOpts := logging.Options{Path: opts.logFile, Level: opts.logLevel}
	logPath, err := logging.ResolvePath(logOpts)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Setup(logOpts)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := eventbus.New(logger)
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(baseDir, bus)
	cfg, err := loadConfig(configSvc, opts.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}
	logger.Info().
		Strs("roots", roots).
		Stringer("debounce", cfg.Debounce.Scheduler()).
		Str("query", cfg.InitialQuery).
		Msg("starting")

	if opts.writeConfig {
		if err := configSvc.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(baseDir, config.FileName))
		return nil
	}

	scanner := &discovery.Scanner{
		MaxDepth:      cfg.Scan.MaxDepth,
		SkipDirs:      cfg.Scan.SkipDirs,
		IncludeDirs:   cfg.Scan.IncludeDirs,
		IncludeHidden: cfg.Scan.IncludeHidden,
		Exclude:       []string{logPath},
		Bus:           bus,
		Logger:        logger,
	}

	var entries []domain.Entry
	if opts.stdin {
		if entries, err = discovery.ReadLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	if opts.print {
		if !opts.stdin {
			res, err := scanner.Scan(ctx, roots)
			if err != nil {
				return err
			}
			entries = res.Entries
		}
		return printMatches(cmd.OutOrStdout(), entries, cfg)
	}

	return runInteractive(ctx, cmd, runParams{
		cfg:     cfg,
		roots:   roots,
		entries: entries,
		scan:    !opts.stdin,
		scanner: scanner,
		bus:     bus,
		logger:  logger,
	})
}

// loadConfig reads the config from an explicit path or the bound directory
func loadConfig(svc config.ConfigService, path string) (*config.Config, error) {
	if path != "" {
		return svc.LoadFromPath(path)
	}
	return svc.Load()
}

// applyFlags overrides config values with the flags the user set
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *cliOptions) error {
	flags := cmd.Flags()

	if flags.Changed("query") {
		cfg.InitialQuery = opts.query
	}
	if flags.Changed("debounce-ms") {
		cfg.Debounce.Enabled = true
		cfg.Debounce.DurationMs = opts.debounceMs
	}
	if opts.noDebounce {
		cfg.Debounce.Enabled = false
	}
	if flags.Changed("case-sensitive") {
		cfg.Filter.CaseSensitive = opts.caseSensitive
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled = opts.watch
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// printMatches writes the entries matching the initial query, one per line
func printMatches(w io.Writer, entries []domain.Entry, cfg *config.Config) error {
	s, err := searchable.New(searchable.Options[domain.Entry, string]{
		Items:        entries,
		Predicate:    ui.EntryFields().Only(cfg.Filter.Fields...).Predicate(cfg.Filter.CaseSensitive),
		InitialQuery: cfg.InitialQuery,
		Debounce:     scheduler.Disabled(),
		Children: func(ctx searchable.Context[domain.Entry]) string {
			var b strings.Builder
			for _, e := range ctx.Items {
				b.WriteString(e.Path)
				b.WriteByte('\n')
			}
			return b.String()
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	out, _ := s.Render()
	_, err = io.WriteString(w, out)
	return err
}

type runParams struct {
	cfg     *config.Config
	roots   []string
	entries []domain.Entry
	scan    bool
	scanner *discovery.Scanner
	bus     eventbus.EventBus
	logger  zerolog.Logger
}

// runInteractive runs the TUI and prints the chosen entry
func runInteractive(ctx context.Context, cmd *cobra.Command, rp runParams) error {
	model, err := ui.NewModel(ui.Options{
		Entries: rp.entries,
		Config:  rp.cfg,
		Bus:     rp.bus,
		Logger:  rp.logger,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	// The UI draws on stderr so the chosen path can be captured from stdout
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)
	model.SetProgram(p)

	unsubscribe := rp.bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	})
	defer unsubscribe()

	var watcher *watch.Watcher
	if rp.scan && rp.cfg.Watch.Enabled {
		watcher, err = watch.New(rp.scanner, rp.roots, rp.cfg.Watch.RescanDelay(),
			func(entries []domain.Entry) { p.Send(ui.CandidatesMsg{Entries: entries}) },
			watch.WithBus(rp.bus),
			watch.WithLogger(rp.logger),
		)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Stop()
	}

	// Scan in the background so the UI comes up straight away
	scanCtx, cancelScan := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if rp.scan {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := rp.scanner.Scan(scanCtx, rp.roots)
			if err != nil {
				rp.logger.Debug().Err(err).Msg("background scan stopped")
				return
			}
			p.Send(ui.CandidatesMsg{Entries: res.Entries})

			if watcher != nil {
				if err := watcher.Start(res.Dirs); err != nil {
					rp.logger.Error().Err(err).Msg("failed to watch directories")
					rp.bus.Publish(eventbus.ErrorEvent{Message: "Watch disabled: " + err.Error(), Err: err})
				}
			}
		}()
	}

	_, runErr := p.Run()
	cancelScan()
	wg.Wait()

	if runErr != nil && ctx.Err() == nil {
		rp.logger.Error().Err(runErr).Msg("error running program")
		return fmt.Errorf("error running program: %w", runErr)
	}
	rp.logger.Info().Msg("UI exited normally")

	if entry, ok := model.Selection(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), entry.Path)
	}
	return nil
}
