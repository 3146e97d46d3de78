/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"github.com/google/uuid"
)

// Role is a player's role for the length of a round.
type Role string

const (
	RoleNormal   Role = "normal"
	RoleImpostor Role = "impostor"
)

func (r Role) IsImpostor() bool {
	return r == RoleImpostor
}

// Player is fixed for the round once the roster is built.
type Player struct {
	ID   int  `json:"id"`
	Role Role `json:"role"`
}

// Round holds everything a round needs. The zero value is the pre-round shape.
type Round struct {
	ID       uuid.UUID
	Players  []Player
	Current  int
	Item     *Item
	Clue     string
	Revealed bool
	Ended    bool
}

// Phase is derived from the shape of a Round.
type Phase string

const (
	PhaseNoRound        Phase = "no_round"
	PhaseAwaitingReveal Phase = "awaiting_reveal"
	PhaseCardShown      Phase = "card_shown"
	PhaseRoundEnded     Phase = "round_ended"
)

func (p Phase) String() string {
	return string(p)
}

func (r Round) Phase() Phase {
	switch {
	case len(r.Players) == 0:
		return PhaseNoRound
	case r.Ended:
		return PhaseRoundEnded
	case r.Revealed:
		return PhaseCardShown
	default:
		return PhaseAwaitingReveal
	}
}

// Impostor returns the index of the impostor, or -1 before a round starts.
func (r Round) Impostor() int {
	for i, p := range r.Players {
		if p.Role.IsImpostor() {
			return i
		}
	}
	return -1
}

// clone copies the round so callers cannot reach the sequencer's roster.
func (r Round) clone() Round {
	out := r
	if r.Players != nil {
		out.Players = append([]Player(nil), r.Players...)
	}
	if r.Item != nil {
		item := *r.Item
		item.Clues = append([]string(nil), r.Item.Clues...)
		out.Item = &item
	}
	return out
}
