package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/tasklite/internal/app"
	"github.com/nhle/tasklite/internal/logging"
	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/store"
	appsync "github.com/nhle/tasklite/internal/sync"
	"github.com/nhle/tasklite/internal/theme"
)

// confirmFunc asks the user a yes/no question.
type confirmFunc func(title, description string) (bool, error)

// rootOptions holds the persistent flags and the collaborators commands
// are built from. Tests replace confirm.
type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string

	// fetchTimeout overrides remote.timeout_sec when positive.
	fetchTimeout time.Duration

	confirm confirmFunc
}

// env is the composition root for one command invocation.
type env struct {
	cfg      *model.AppConfig
	log      *log.Logger
	store    *store.SQLiteStore
	importer *appsync.Importer
	session  *app.Session
}

func (e *env) Close() error {
	return e.store.Close()
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{confirm: huhConfirm})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasklite",
		Short: "A local task list with duplicate-safe remote import",
		Long: `tasklite keeps a task list in a local SQLite file.

Tasks can be added, edited, toggled, deleted and searched. The import
command merges a remote JSON collection into the list, skipping titles
that already exist (compared case-insensitively, ignoring surrounding
whitespace).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides database.path)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newImportCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// open builds the logger, store, importer and session, seeds a new
// database and loads the task list. A store that cannot be opened or
// migrated is returned as an error and ends the process.
func (o *rootOptions) open(ctx context.Context) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening task store %s: %w", cfg.Database.Path, err)
	}

	if cfg.Seed.Enabled {
		n, err := s.SeedIfEmpty(ctx)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("seeding task store: %w", err)
		}
		if n > 0 {
			logger.WithField("inserted", n).Info("seeded empty task list")
		}
	}

	timeout := time.Duration(cfg.Remote.TimeoutSec) * time.Second
	if o.fetchTimeout > 0 {
		timeout = o.fetchTimeout
	}
	im := appsync.New(s, appsync.Options{FetchTimeout: timeout, Logger: logger})
	sess := app.New(s, im, app.Options{Logger: logger})
	if err := sess.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}

	return &env{cfg: cfg, log: logger, store: s, importer: im, session: sess}, nil
}

// printNotifications writes the session's info notifications to w. Error
// notifications are skipped; the failing command returns the error itself.
func printNotifications(w io.Writer, sess *app.Session) {
	for _, n := range sess.Notifications() {
		if n.Level == model.NotificationError {
			continue
		}
		fmt.Fprintln(w, theme.RenderNotification(n))
	}
}

func huhConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
