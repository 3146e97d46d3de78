/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"strings"
)

const (
	MinPlayers     = 3
	MaxPlayers     = 12
	DefaultPlayers = 4
)

// Item is one entry of the catalog: the secret word, the clues an impostor
// may receive, and an image reference shown alongside the word.
type Item struct {
	Word   string   `json:"word"`
	Clues  []string `json:"clues"`
	Imagen string   `json:"imagen"`
}

// usableClues returns the clues that can be handed to an impostor.
// Blank clues and clues that spell out the word itself are dropped.
func (i Item) usableClues() []string {
	word := strings.TrimSpace(i.Word)

	clues := make([]string, 0, len(i.Clues))
	for _, c := range i.Clues {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" || strings.EqualFold(trimmed, word) {
			continue
		}
		clues = append(clues, c)
	}

	return clues
}

// Playable reports whether a round can be built from this item.
func (i Item) Playable() bool {
	return strings.TrimSpace(i.Word) != "" && len(i.usableClues()) > 0
}

// Catalog is the externally sourced list of items.
type Catalog []Item

// Playable returns the subset of items a round can be built from.
func (c Catalog) Playable() Catalog {
	out := make(Catalog, 0, len(c))
	for _, item := range c {
		if item.Playable() {
			out = append(out, item)
		}
	}
	return out
}

// ValidatePlayerCount rejects counts outside [MinPlayers, MaxPlayers].
func ValidatePlayerCount(n int) error {
	if n < MinPlayers || n > MaxPlayers {
		return &PlayerCountError{Count: n}
	}
	return nil
}
