// Command stockctl manages color stock and formulas on the remote stock API.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rubberstock/internal/api"
	"rubberstock/internal/config"
	"rubberstock/internal/db"
	"rubberstock/internal/editor"
	"rubberstock/internal/inventory"
	applog "rubberstock/internal/log"
	"rubberstock/internal/order"
)

// globalOptions holds the persistent flags. Empty values defer to the
// environment.
type globalOptions struct {
	envFile   string
	apiURL    string
	stateURL  string
	logLevel  string
	pushOrder bool
}

// app is the wired dependency set shared by every subcommand.
type app struct {
	opts      globalOptions
	cfg       config.Config
	client    *api.Client
	inventory *inventory.Service
	editor    *editor.Editor
	closeDB   func() error
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Manage rubber compound color stock and formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.envFile, "env-file", ".env", "dotenv file read before the environment")
	flags.StringVar(&a.opts.apiURL, "api-url", "", "stock API base URL (overrides RUBBER_API_URL)")
	flags.StringVar(&a.opts.stateURL, "state", "", "local state database URL (overrides DATABASE_URL)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.opts.pushOrder, "push-order", false, "replay every color to the server after a reorder")

	root.AddCommand(newColorsCmd(a), newFormulasCmd(a), newIngredientsCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if err := config.LoadDotEnv(a.opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(a.opts.apiURL, "/")
	}
	if a.opts.stateURL != "" {
		cfg.Database.URL = a.opts.stateURL
	}
	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
	if cmd.Flags().Changed("push-order") {
		cfg.Order.PushToServer = a.opts.pushOrder
	}

	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	if err := applog.SetFormat(cfg.Logging.Format); err != nil {
		return err
	}
	applog.Debug(ctx, "stockctl configured", "api", cfg.API.BaseURL, "state", cfg.Database.URL)

	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	if err != nil {
		return err
	}

	stateDB, err := db.OpenState(cfg.Database)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	a.closeDB = func() error {
		sqlDB, err := stateDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	store, err := order.NewGormStore(stateDB)
	if err != nil {
		return err
	}
	service, err := inventory.NewService(client, store, inventory.Options{PushOrder: cfg.Order.PushToServer})
	if err != nil {
		return err
	}
	formulaEditor, err := editor.New(client)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.client = client
	a.inventory = service
	a.editor = formulaEditor
	return nil
}

func (a *app) close() error {
	if a.closeDB == nil {
		return nil
	}
	err := a.closeDB()
	a.closeDB = nil
	return err
}
