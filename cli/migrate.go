package cli

import (
	"context"
	"fmt"
	"os"

	"Impostor/config"
	"Impostor/services/words"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.Connect(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			log.Info().Msg("migrating database...")
			if err := config.MigrateDatabase(db); err != nil {
				return err
			}
			log.Info().Msg("database migrated successfully")
			return nil
		},
	}
}

func newSeedWordsCmd(cfg *config.Config) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-words",
		Short: "Load word pairs into the database",
		Long:  "Loads the built-in catalog, or a JSON catalog given with --file. Pairs already present are skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := loadCatalog(file)
			if err != nil {
				return err
			}

			db, err := config.Connect(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := config.MigrateDatabase(db); err != nil {
				return err
			}
			added, err := words.Seed(cmd.Context(), db, pairs)
			if err != nil {
				return err
			}
			log.Info().Int("added", added).Int("catalog", len(pairs)).Msg("words seeded")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON word catalog (default: built-in)")
	return cmd
}

func loadCatalog(file string) ([]words.Pair, error) {
	if file == "" {
		return words.BuiltinCatalog()
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return words.ParseCatalog(raw)
}

// prepareDatabase migrates and seeds on startup when asked to. A fresh
// sqlite file has no schema yet, so local mode always does.
func prepareDatabase(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !cfg.MigratePostgres && cfg.SQLitePath == "" {
		return nil
	}
	if err := migrateAndSeed(ctx, db); err != nil {
		return fmt.Errorf("preparing database: %w", err)
	}
	return nil
}

// migrateAndSeed prepares an empty database for play.
func migrateAndSeed(ctx context.Context, db *gorm.DB) error {
	if err := config.MigrateDatabase(db); err != nil {
		return err
	}
	pairs, err := words.BuiltinCatalog()
	if err != nil {
		return err
	}
	added, err := words.Seed(ctx, db, pairs)
	if err != nil {
		return err
	}
	log.Info().Int("added", added).Msg("database migrated successfully")
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
