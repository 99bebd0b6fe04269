package config

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"time"

	"Impostor/models/postgres"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database: a local sqlite file when
// --sqlite-path is set, PostgreSQL otherwise.
func Connect(cfg *Config) (*gorm.DB, error) {
	if cfg.SQLitePath != "" {
		return OpenSQLite(cfg.SQLitePath, cfg.VerbosePostgres)
	}
	return ConnectGORM(cfg.PostgresDSN(), cfg.VerbosePostgres)
}

func gormConfig(verbose bool) *gorm.Config {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if verbose {
		gormConfig.Logger = logger.New(
			stdlog.New(log.Logger, "", 0),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}
	return gormConfig
}

// ConnectGORM returns a GORM DB instance connected to PostgreSQL
func ConnectGORM(dsn string, verbose bool) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error().Err(err).Msg("error connecting to PostgreSQL")
		return nil, err
	}

	// NOTE: simple protocol keeps pgbouncer-style poolers happy
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormConfig(verbose))
	if err != nil {
		log.Error().Err(err).Msg("error connecting to PostgreSQL with GORM")
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		log.Error().Err(err).Msg("error pinging PostgreSQL")
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Msg("successfully connected to PostgreSQL with GORM")
	return db, nil
}

// OpenSQLite opens a sqlite database. sqlite only allows one writer, so
// the pool is pinned to a single connection.
func OpenSQLite(dsn string, verbose bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(verbose))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// MigrateDatabase migrates the GORM models and makes sure the global round
// counter row exists.
func MigrateDatabase(db *gorm.DB) error {
	err := db.AutoMigrate(
		&postgres.Word{},
		&postgres.WordUsage{},
		&postgres.GameRound{},
		&postgres.Lobby{},
		&postgres.Player{},
		&postgres.Message{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&postgres.GameRound{ID: postgres.RoundCounterID}).Error
	if err != nil {
		return fmt.Errorf("seeding round counter failed: %w", err)
	}

	log.Info().Msg("database migrated successfully")
	return nil
}
