/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCatalog       = errors.New("no playable items in catalog")
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrRoundInProgress    = errors.New("round in progress")
)

// PlayerCountError is returned when a player count is outside the allowed range.
type PlayerCountError struct {
	Count int
}

func (e *PlayerCountError) Error() string {
	return fmt.Sprintf("invalid player count (must be between %d-%d inclusive): %d", MinPlayers, MaxPlayers, e.Count)
}

func (e *PlayerCountError) Unwrap() error {
	return ErrInvalidPlayerCount
}
