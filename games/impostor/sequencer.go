/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package impostor implements the round logic of a pass-the-device word game.
//
// One secret word is chosen per round. Exactly one player is secretly the
// impostor and sees only a clue; everyone else sees the word and its image.
// Players take turns viewing their card on a single shared device, driven by
// one "advance" input whose meaning depends on the current phase:
//
//	no_round         -> start a round
//	awaiting_reveal  -> show the current player's card
//	card_shown       -> hide it and move to the next player (or end the round)
//	round_ended      -> reset to no_round
//
// Discussion, voting and scoring happen off-system.
package impostor

// Sequencer owns the round state and is its only writer. It is not safe for
// concurrent use; callers serialize input the way a single device does.
type Sequencer struct {
	setup   *Setup
	items   func() Catalog
	players int
	round   Round

	advance map[Phase]func() error
}

// NewSequencer returns a sequencer in PhaseNoRound. items is consulted each
// time a round starts, so a catalog that finishes loading later is picked up.
func NewSequencer(setup *Setup, items func() Catalog) *Sequencer {
	s := &Sequencer{
		setup:   setup,
		items:   items,
		players: DefaultPlayers,
	}

	s.advance = map[Phase]func() error{
		PhaseNoRound: s.StartGame,
		PhaseAwaitingReveal: func() error {
			s.RevealCard()
			return nil
		},
		PhaseCardShown: func() error {
			s.NextPlayer()
			return nil
		},
		PhaseRoundEnded: func() error {
			s.ResetGame()
			return nil
		},
	}

	return s
}

// StaticCatalog adapts a fixed catalog for NewSequencer.
func StaticCatalog(c Catalog) func() Catalog {
	return func() Catalog {
		return c
	}
}

// Advance applies the single shared input according to the current phase.
func (s *Sequencer) Advance() error {
	step, ok := s.advance[s.round.Phase()]
	if !ok {
		return nil
	}

	return step()
}

// StartGame builds a new round. Outside PhaseNoRound it does nothing. If no
// playable item is available the state is left untouched and
// ErrEmptyCatalog is returned.
func (s *Sequencer) StartGame() error {
	if s.round.Phase() != PhaseNoRound {
		return nil
	}

	round, err := s.setup.Start(s.catalog(), s.players)
	if err != nil {
		return err
	}

	s.round = round

	return nil
}

// RevealCard shows the current player's card. It is a no-op unless a player
// is waiting to reveal, so a second call while the card is shown changes nothing.
func (s *Sequencer) RevealCard() {
	if s.round.Phase() != PhaseAwaitingReveal {
		return
	}

	s.round.Revealed = true
}

// NextPlayer hides the card and passes the turn on, ending the round after
// the last player. It is a no-op unless a card is currently shown.
func (s *Sequencer) NextPlayer() {
	if s.round.Phase() != PhaseCardShown {
		return
	}

	s.round.Revealed = false

	if s.round.Current+1 >= len(s.round.Players) {
		s.round.Ended = true
		return
	}

	s.round.Current++
}

// ResetGame discards the finished round. It is a no-op until the round has ended.
func (s *Sequencer) ResetGame() {
	if s.round.Phase() != PhaseRoundEnded {
		return
	}

	s.round = Round{}
}

// SetPlayers changes the player count used by the next round.
func (s *Sequencer) SetPlayers(n int) error {
	if err := ValidatePlayerCount(n); err != nil {
		return err
	}

	if s.round.Phase() != PhaseNoRound {
		return ErrRoundInProgress
	}

	s.players = n

	return nil
}

func (s *Sequencer) Players() int {
	return s.players
}

func (s *Sequencer) Phase() Phase {
	return s.round.Phase()
}

// State returns a copy of the round.
func (s *Sequencer) State() Round {
	return s.round.clone()
}

// Card returns the current player's card while it is shown.
func (s *Sequencer) Card() (Card, bool) {
	if s.round.Phase() != PhaseCardShown {
		return Card{}, false
	}

	return cardFor(s.round.Players[s.round.Current], s.round.Item, s.round.Clue), true
}

// View describes which screen to draw and what it may show.
func (s *Sequencer) View() View {
	v := View{
		Players:     s.players,
		MinPlayers:  MinPlayers,
		MaxPlayers:  MaxPlayers,
		CatalogSize: len(s.catalog().Playable()),
	}

	phase := s.round.Phase()
	if phase != PhaseNoRound {
		v.RoundID = s.round.ID.String()
		v.Players = len(s.round.Players)
		v.Player = s.round.Current + 1
	}

	switch phase {
	case PhaseNoRound:
		v.Kind = ViewSetup
	case PhaseAwaitingReveal:
		v.Kind = ViewReady
	case PhaseCardShown:
		v.Kind = ViewCard
		card, _ := s.Card()
		v.Card = &card
	case PhaseRoundEnded:
		v.Kind = ViewEnded
	}

	return v
}

func (s *Sequencer) catalog() Catalog {
	if s.items == nil {
		return nil
	}
	return s.items()
}
