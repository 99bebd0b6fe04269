package words

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"Impostor/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoWordAvailable is returned when every eligible word is cooling down
// or the language has no paired words at all.
var ErrNoWordAvailable = errors.New("no word available")

// Selector picks round words. A word dealt in global round r is not dealt
// again before round r+cooldown.
type Selector struct {
	cooldown uint64
}

func NewSelector(cooldownRounds int) *Selector {
	if cooldownRounds < 0 {
		cooldownRounds = 0
	}
	return &Selector{cooldown: uint64(cooldownRounds)}
}

// SelectWordForGame bumps the global round counter and draws a crew word
// outside the cooldown window. When db is already inside a transaction the
// work runs in a savepoint, so the counter lock is held until the caller
// commits. The counter increment commits even when no word is available.
func (s *Selector) SelectWordForGame(ctx context.Context, db *gorm.DB, language string) (*postgres.Word, error) {
	var picked *postgres.Word
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := s.incrementRound(tx)
		if err != nil {
			return err
		}

		excluded, err := s.recentlyUsed(tx, round)
		if err != nil {
			return err
		}

		query := tx.Model(&postgres.Word{}).
			Where("is_impostor_word = ? AND impostor_word_id IS NOT NULL AND language = ?", false, language)
		if len(excluded) > 0 {
			query = query.Where("id NOT IN ?", excluded)
		}
		var candidates []uint
		if err := query.Order("id").Pluck("id", &candidates).Error; err != nil {
			return fmt.Errorf("list candidate words: %w", err)
		}
		if len(candidates) == 0 {
			return nil
		}

		var word postgres.Word
		id := candidates[rand.Intn(len(candidates))]
		if err := tx.Preload("ImpostorWord").First(&word, id).Error; err != nil {
			return fmt.Errorf("load word %d: %w", id, err)
		}
		if err := tx.Create(&postgres.WordUsage{WordID: word.ID, Round: round}).Error; err != nil {
			return fmt.Errorf("record word usage: %w", err)
		}
		picked = &word
		return nil
	})
	if err != nil {
		return nil, err
	}
	if picked == nil {
		return nil, fmt.Errorf("%w for language %q", ErrNoWordAvailable, language)
	}
	return picked, nil
}

// incrementRound locks the counter row FOR UPDATE and bumps it, creating
// the row first when migrations have not.
func (s *Selector) incrementRound(tx *gorm.DB) (uint64, error) {
	var counter postgres.GameRound
	err := lockCounter(tx, &counter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&postgres.GameRound{ID: postgres.RoundCounterID}).Error
		if err != nil {
			return 0, fmt.Errorf("create round counter: %w", err)
		}
		err = lockCounter(tx, &counter)
	}
	if err != nil {
		return 0, fmt.Errorf("lock round counter: %w", err)
	}

	counter.CurrentRound++
	if err := tx.Model(&counter).Update("current_round", counter.CurrentRound).Error; err != nil {
		return 0, fmt.Errorf("bump round counter: %w", err)
	}
	return counter.CurrentRound, nil
}

func lockCounter(tx *gorm.DB, counter *postgres.GameRound) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(counter, postgres.RoundCounterID).Error
}

// recentlyUsed returns the words dealt in rounds [max(1, round-cooldown), round-1].
func (s *Selector) recentlyUsed(tx *gorm.DB, round uint64) ([]uint, error) {
	if s.cooldown == 0 || round <= 1 {
		return nil, nil
	}
	low := uint64(1)
	if round > s.cooldown {
		low = round - s.cooldown
	}

	var ids []uint
	err := tx.Model(&postgres.WordUsage{}).
		Where("round BETWEEN ? AND ?", low, round-1).
		Distinct().Pluck("word_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list recent words: %w", err)
	}
	return ids, nil
}
