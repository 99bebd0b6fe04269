// Package testutil builds throwaway stores for package tests: a migrated
// in-memory sqlite database and a miniredis instance.
package testutil

import (
	"fmt"
	"testing"

	"Impostor/config"
	"Impostor/models/postgres"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.OpenSQLite(dsn, false)
	require.NoError(t, err)
	require.NoError(t, config.MigrateDatabase(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewRedis starts a miniredis server and a client pointed at it.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// SeedWordPairs inserts n crew words, each paired with an impostor word,
// in the given language. The crew words are returned in insertion order.
func SeedWordPairs(t testing.TB, db *gorm.DB, language string, n int) []postgres.Word {
	t.Helper()
	crew := make([]postgres.Word, 0, n)
	for i := 0; i < n; i++ {
		impostor := postgres.Word{
			Text:           fmt.Sprintf("decoy-%s-%d", language, i),
			Category:       "test",
			Difficulty:     1 + i%5,
			Language:       language,
			IsImpostorWord: true,
		}
		require.NoError(t, db.Create(&impostor).Error)

		word := postgres.Word{
			Text:           fmt.Sprintf("word-%s-%d", language, i),
			Category:       "test",
			Difficulty:     1 + i%5,
			Language:       language,
			ImpostorWordID: &impostor.ID,
		}
		require.NoError(t, db.Create(&word).Error)
		crew = append(crew, word)
	}
	return crew
}
