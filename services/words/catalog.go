package words

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"Impostor/models/postgres"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed catalog.json
var builtinCatalog []byte

// Pair is one catalog entry: a crew word and the impostor word dealt
// alongside it.
type Pair struct {
	Word       string `json:"word"`
	Impostor   string `json:"impostor"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
	Language   string `json:"language"`
}

func (p Pair) validate() error {
	switch {
	case p.Word == "" || p.Impostor == "":
		return errors.New("word and impostor are required")
	case p.Word == p.Impostor:
		return fmt.Errorf("%q pairs with itself", p.Word)
	case p.Difficulty < 1 || p.Difficulty > 5:
		return fmt.Errorf("%q has difficulty %d, want 1-5", p.Word, p.Difficulty)
	case p.Language == "":
		return fmt.Errorf("%q has no language", p.Word)
	}
	return nil
}

// BuiltinCatalog returns the word pairs shipped with the binary.
func BuiltinCatalog() ([]Pair, error) {
	return ParseCatalog(builtinCatalog)
}

// ParseCatalog decodes and validates a JSON list of pairs.
func ParseCatalog(raw []byte) ([]Pair, error) {
	var pairs []Pair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, p := range pairs {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return pairs, nil
}

// Seed inserts the pairs that are not in the database yet and returns how
// many crew words were added. Existing words are left untouched, so seeding
// twice is a no-op.
func Seed(ctx context.Context, db *gorm.DB, pairs []Pair) (int, error) {
	added := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			impostor := postgres.Word{
				Text:           p.Impostor,
				Category:       p.Category,
				Difficulty:     p.Difficulty,
				Language:       p.Language,
				IsImpostorWord: true,
			}
			if err := tx.Where("word = ? AND language = ?", p.Impostor, p.Language).
				FirstOrCreate(&impostor).Error; err != nil {
				return fmt.Errorf("seed %q: %w", p.Impostor, err)
			}

			var existing postgres.Word
			err := tx.Where("word = ? AND language = ?", p.Word, p.Language).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			crew := postgres.Word{
				Text:           p.Word,
				Category:       p.Category,
				Difficulty:     p.Difficulty,
				Language:       p.Language,
				ImpostorWordID: &impostor.ID,
			}
			if err := tx.Create(&crew).Error; err != nil {
				return fmt.Errorf("seed %q: %w", p.Word, err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("added", added).Int("pairs", len(pairs)).Msg("word catalog seeded")
	return added, nil
}
