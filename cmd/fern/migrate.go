package main

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/database"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	var cfg database.MigrationConfig
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply golden record store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()

			ms := database.NewMigrationService(a.logger, cfg)
			if err := ms.Migrate(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN()); err != nil {
				return err
			}
			version, dirty, err := ms.Version(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"version": version, "dirty": dirty})
		},
	}
	cmd.Flags().UintVar(&cfg.Version, "to", 0, "migrate to this version instead of the latest")
	cmd.Flags().IntVar(&cfg.Force, "force", 0, "mark the store clean at this version first")
	return cmd
}
