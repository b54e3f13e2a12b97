package cli

import (
	"errors"
	"fmt"

	"github.com/geocoder89/userhub/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	for _, direction := range []string{"up", "down"} {
		migrateCmd.AddCommand(&cobra.Command{
			Use:   direction,
			Short: fmt.Sprintf("Apply all %s migrations", direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}

				if cfg.StoreDriver != "postgres" {
					return errors.New("migrations only apply to STORE_DRIVER=postgres")
				}

				if err := db.Migrate(cfg.DBURL, direction); err != nil {
					return err
				}

				cmd.Printf("migrate %s: done\n", direction)
				return nil
			},
		})
	}

	return migrateCmd
}
