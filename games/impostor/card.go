/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

// Card is what the current player sees once they reveal. An impostor card
// carries only the clue; a normal card carries only the word and image.
type Card struct {
	Role  Role   `json:"role"`
	Word  string `json:"word,omitempty"`
	Image string `json:"image,omitempty"`
	Clue  string `json:"clue,omitempty"`
}

func cardFor(p Player, item *Item, clue string) Card {
	if p.Role.IsImpostor() {
		return Card{
			Role: RoleImpostor,
			Clue: clue,
		}
	}

	return Card{
		Role:  RoleNormal,
		Word:  item.Word,
		Image: item.Imagen,
	}
}

// ViewKind names one of the four screens a renderer draws.
type ViewKind string

const (
	ViewSetup ViewKind = "setup"
	ViewReady ViewKind = "ready"
	ViewCard  ViewKind = "card"
	ViewEnded ViewKind = "ended"
)

// View is the read-only state handed to the renderer.
type View struct {
	Kind        ViewKind `json:"kind"`
	RoundID     string   `json:"round_id,omitempty"`
	Player      int      `json:"player,omitempty"`
	Players     int      `json:"players"`
	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
	CatalogSize int      `json:"catalog_size"`
	Card        *Card    `json:"card,omitempty"`
}
