package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/repo/postgres"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/spf13/cobra"

	httpx "github.com/geocoder89/userhub/internal/http"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "userhub",
		Short:         "User account management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// bare `userhub` runs the server
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedAdminCmd())

	return root
}

// Execute runs the CLI; main only maps the error to an exit code.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// openStore returns the configured user store and a func releasing it.
func openStore(ctx context.Context, cfg config.Config, metrics *observability.Prom, log *slog.Logger) (httpx.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUsersRepo(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect failed: %w", err)
	}

	return postgres.NewUsersRepo(pool, metrics), pool.Close, nil
}

func newHasher(cfg config.Config) *security.Hasher {
	return security.NewHasher(cfg.BcryptCost)
}

func adminSeed(cfg config.Config) db.AdminSeed {
	return db.AdminSeed{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	}
}
