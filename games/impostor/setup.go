/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	crand "crypto/rand"
	"io"

	"github.com/google/uuid"
)

// Setup builds new rounds. Content is chosen with the Picker; the impostor
// is always chosen from crypto/rand.
type Setup struct {
	picker Picker
	secret io.Reader
}

func NewSetup(picker Picker) *Setup {
	return &Setup{
		picker: picker,
		secret: crand.Reader,
	}
}

// Start picks an item and clue, then builds a roster of n players with
// exactly one impostor. The count must already be validated; an invalid one
// is still refused here rather than building a broken roster.
func (s *Setup) Start(catalog Catalog, n int) (Round, error) {
	if err := ValidatePlayerCount(n); err != nil {
		return Round{}, err
	}

	items := catalog.Playable()
	if len(items) == 0 {
		return Round{}, ErrEmptyCatalog
	}

	item := items[s.picker.IntN(len(items))]
	clues := item.usableClues()
	clue := clues[s.picker.IntN(len(clues))]

	impostor, err := secretIndex(s.secret, n)
	if err != nil {
		return Round{}, err
	}

	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: i, Role: RoleNormal}
	}
	players[impostor].Role = RoleImpostor

	item.Clues = append([]string(nil), item.Clues...)

	return Round{
		ID:      uuid.New(),
		Players: players,
		Item:    &item,
		Clue:    clue,
	}, nil
}
