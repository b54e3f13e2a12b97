package cli

import (
	"errors"

	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/spf13/cobra"
)

func newSeedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap admin from ADMIN_EMAIL / ADMIN_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
				return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
			}

			log := observability.NewLogger(cfg.Env)

			store, closeStore, err := openStore(cmd.Context(), cfg, nil, log)
			if err != nil {
				return err
			}
			defer closeStore()

			created, err := db.EnsureAdminUser(cmd.Context(), store, newHasher(cfg), adminSeed(cfg))
			if err != nil {
				return err
			}

			if created {
				cmd.Printf("admin %s created\n", cfg.AdminEmail)
			} else {
				cmd.Printf("admin %s already exists\n", cfg.AdminEmail)
			}
			return nil
		},
	}
}
