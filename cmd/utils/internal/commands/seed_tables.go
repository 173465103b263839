package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/seating/internal/mongo"
	"github.com/appetiteclub/seating/internal/reservations"
)

func newSeedTablesCmd(e *env) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed-tables",
		Short: "Create the tables listed in seed.json if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo := mongo.NewTableRepo(e.config, e.logger)
			if err := repo.Start(ctx); err != nil {
				return err
			}
			defer repo.Stop(ctx)

			if err := reservations.ApplyTableSeeds(ctx, repo, os.DirFS(dir), e.logger); err != nil {
				return err
			}

			e.logger.Info("Table seeding completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory containing seed.json")
	return cmd
}
