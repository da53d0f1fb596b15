package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketapi/internal/app"
	"marketapi/internal/config"
	"marketapi/internal/database"
	"marketapi/internal/database/migration"
)

// Migrator is the part of migration.Migrator the CLI drives.
type Migrator interface {
	Up(ctx context.Context, dbHost string) error
	Down(steps int) error
	Version() (uint, bool, error)
}

// Runtime opens backing services lazily so that each command only connects to what it uses.
type Runtime struct {
	Config *config.AppConfig
	Log    zerolog.Logger

	OpenMigrator func(ctx context.Context) (Migrator, func() error, error)
	OpenApp      func(ctx context.Context) (*app.App, error)
}

// NewRuntime returns a Runtime backed by the real database and services.
func NewRuntime(cfg *config.AppConfig, log zerolog.Logger) *Runtime {
	return &Runtime{
		Config: cfg,
		Log:    log,
		OpenMigrator: func(ctx context.Context) (Migrator, func() error, error) {
			db, err := database.NewPostgres(ctx, cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			mg, err := migration.New(db, log)
			if err != nil {
				_ = db.Close()
				return nil, nil, err
			}
			return mg, db.Close, nil
		},
		OpenApp: func(ctx context.Context) (*app.App, error) {
			// CLI runs do not expose metrics.
			return app.New(ctx, cfg, nil, log)
		},
	}
}

// Register attaches every command group to root.
func Register(root *cobra.Command, rt *Runtime) {
	root.AddCommand(
		newMigrateCmd(rt),
		newJobsCmd(rt),
		newSettingsCmd(rt),
		newCategoriesCmd(rt),
	)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
