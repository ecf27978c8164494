package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yoockh/interviewpilot/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes for the configured backends",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		done := false

		if cfg.PostgresURI != "" {
			db, err := config.OpenPostgres(cfg)
			if err != nil {
				return err
			}
			if err := config.MigratePostgres(db); err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Info("postgres migrated")
			done = true
		}

		if cfg.MongoURI != "" {
			client, err := config.OpenMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Disconnect(ctx)
			if err := config.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
				return err
			}
			log.Info("mongo indexes ensured")
			done = true
		}

		if !done {
			return errors.New("nothing to migrate: set POSTGRES_URI or MONGO_URI")
		}
		return nil
	},
}
