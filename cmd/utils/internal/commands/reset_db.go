package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newResetDBCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop the seating database (tables, reservations, slot locks, seed history)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dbName := e.config.GetStringOrDef("db.mongo.name", "seating")
			if !yes {
				return fmt.Errorf("refusing to drop %s without --yes", dbName)
			}

			mongoURL := e.config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017")
			client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
			if err != nil {
				return fmt.Errorf("connect to mongodb: %w", err)
			}
			defer client.Disconnect(ctx)

			if err := client.Ping(ctx, nil); err != nil {
				return fmt.Errorf("ping mongodb: %w", err)
			}

			e.logger.Info("Dropping database", "database", dbName)
			result := client.Database(dbName).RunCommand(ctx, bson.D{{Key: "dropDatabase", Value: 1}})
			if err := result.Err(); err != nil {
				return fmt.Errorf("drop database %s: %w", dbName, err)
			}

			e.logger.Info("Database dropped", "database", dbName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the drop")
	return cmd
}
