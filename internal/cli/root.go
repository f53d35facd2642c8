// Package cli wires configuration, logging, the API client and the TUI
// behind a Cobra root command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"catalogadmin/internal/api"
	"catalogadmin/internal/config"
	"catalogadmin/internal/eventbus"
	"catalogadmin/internal/ui"
)

type rootOptions struct {
	configPath string
	apiURL     string
	lang       string
	policy     string
	noMouse    bool
	debug      bool
}

// NewRootCmd builds the catalogadmin command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "catalogadmin",
		Short: "Terminal admin for the book and folklore catalog",
		Long: `catalogadmin lists, creates, edits and deletes catalog records
(books, authors, categories, developers and folklore) through the
catalog REST API.

Settings are read from the config file and from CATALOG_* environment
variables; flags override both.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	f.StringVar(&opts.apiURL, "api-url", "", "catalog API base URL")
	f.StringVar(&opts.lang, "lang", "", "display language: cyr or lat")
	f.StringVar(&opts.policy, "invalid-policy", "", "unknown selected values: verbose or compact")
	f.BoolVar(&opts.noMouse, "no-mouse", false, "disable mouse support")
	f.BoolVar(&opts.debug, "debug", false, "log at debug level")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), svc.Path(), cfg)
		},
	}
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command, opts *rootOptions, bus eventbus.EventBus) (config.ConfigService, *config.Config, error) {
	svc := config.NewConfigServiceWithBus(bus, opts.configPath)
	cfg, err := svc.Load()
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = opts.apiURL
	}
	if flags.Changed("lang") {
		cfg.Language = opts.lang
	}
	if flags.Changed("invalid-policy") {
		cfg.UI.InvalidPolicy = opts.policy
	}
	if opts.noMouse {
		cfg.UI.Mouse = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func printConfig(w io.Writer, path string, cfg *config.Config) error {
	shown := *cfg
	if shown.Token != "" {
		shown.Token = "<redacted>"
	}
	data, err := toml.Marshal(shown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "# %s\n%s", path, data)
	return err
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cfg, err := loadConfig(cmd, opts, nil)
	if err != nil {
		return err
	}

	level := zapcore.InfoLevel
	if opts.debug {
		level = zapcore.DebugLevel
	}
	lggr, err := NewLogger(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()
	lggr.Infow("starting", "api_url", cfg.APIURL, "config", svc.Path(), "language", cfg.Lang())

	bus := eventbus.New(lggr)
	defer bus.Close()
	svc = config.NewConfigServiceWithBus(bus, svc.Path())

	client, err := api.NewClient(cfg.APIURL, api.WithLogger(lggr), api.WithToken(cfg.Token))
	if err != nil {
		return err
	}

	model := ui.NewModel(bus, cfg, svc, client, lggr)
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, programOpts...)
	model.SetProgram(p)

	forwardEvents(bus, p, lggr)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			lggr.Infow("interrupted")
			return nil
		}
		lggr.Errorw("program failed", "error", err)
		return err
	}
	lggr.Infow("exited normally")
	return nil
}

// forwardEvents hands domain events to the running program
func forwardEvents(bus eventbus.EventBus, p *tea.Program, lggr *zap.SugaredLogger) {
	send := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	bus.Subscribe(eventbus.EventResourceChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ResourceChangedEvent); ok {
			lggr.Infow("resource changed", "resource", ev.Resource, "id", ev.ID, "op", ev.Op)
		}
		send(e)
	})
	bus.Subscribe(eventbus.EventLoginSucceeded, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.LoginSucceededEvent); ok {
			lggr.Infow("logged in", "username", ev.Username)
		}
		send(e)
	})
	bus.Subscribe(eventbus.EventLoggedOut, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.LoggedOutEvent); ok {
			lggr.Infow("logged out", "reason", ev.Reason)
		}
		send(e)
	})
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			lggr.Errorw(ev.Message, "error", ev.Err)
		}
		send(e)
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ConfigSavedEvent); ok {
			lggr.Debugw("config saved", "path", ev.Path)
		}
		send(e)
	})
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
