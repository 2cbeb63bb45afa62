package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"face-swap-backend/internal/normalize"
	"github.com/supabase-community/supabase-go"
)

var ErrCharacterNotFound = errors.New("character not found")

// CharacterCatalog reads cartoon pictures from the character table.
type CharacterCatalog struct {
	client *supabase.Client
	table  string
	pick   func(n int) int
}

func NewCharacterCatalog(client *supabase.Client, table string) *CharacterCatalog {
	return &CharacterCatalog{client: client, table: table, pick: rand.IntN}
}

// RandomCharacterImage returns one of the character's picture_cartoon
// entries, chosen at random. Entries are URLs or {"url": ...} objects.
func (c *CharacterCatalog) RandomCharacterImage(_ context.Context, characterID string) (string, error) {
	data, _, err := c.client.From(c.table).
		Select("picture_cartoon", "", false).
		Eq("id", characterID).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to query character %s: %w", characterID, err)
	}

	var rows []struct {
		PictureCartoon []any `json:"picture_cartoon"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("failed to parse character row: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: %s", ErrCharacterNotFound, characterID)
	}

	pictures := rows[0].PictureCartoon
	if len(pictures) == 0 {
		return "", fmt.Errorf("character %s has no cartoon pictures", characterID)
	}

	url, err := normalize.Default.URL(pictures[c.pick(len(pictures))])
	if err != nil {
		return "", fmt.Errorf("invalid cartoon picture for character %s: %w", characterID, err)
	}
	return url, nil
}
