package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"campus_exchange/internal/config"
	"campus_exchange/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		dbPool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer dbPool.Close()

		if err := repository.Migrate(ctx, dbPool, log); err != nil {
			return err
		}

		log.Info("Database schema is up to date")
		return nil
	},
}
