/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"
)

var dogCatalog = Catalog{
	{Word: "Dog", Clues: []string{"Barks"}, Imagen: "dog.png"},
}

var sampleCatalog = Catalog{
	{Word: "Dog", Clues: []string{"Barks", "Leash"}, Imagen: "dog.png"},
	{Word: "Beach", Clues: []string{"Sand", "Waves", "Towel"}, Imagen: "beach.png"},
	{Word: "Piano", Clues: []string{"Keys"}, Imagen: "piano.png"},
}

func seededPicker() Picker {
	return rand.New(rand.NewPCG(1, 2))
}

// newTestSequencer returns a sequencer whose impostor draws come from secret
// instead of crypto/rand. Only tests can do this.
func newTestSequencer(t *testing.T, catalog Catalog, secret []byte) *Sequencer {
	t.Helper()

	setup := NewSetup(seededPicker())
	if secret != nil {
		setup.secret = bytes.NewReader(secret)
	}

	return NewSequencer(setup, StaticCatalog(catalog))
}

// playRound walks every player through reveal and advance using only Advance.
func playRound(t *testing.T, s *Sequencer) {
	t.Helper()

	for range s.State().Players {
		if err := s.Advance(); err != nil {
			t.Fatalf("reveal: %v", err)
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
}

// secretBytes encodes draws for the impostor reader, one uint64 per value.
func secretBytes(vals ...uint64) []byte {
	b := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		b = binary.BigEndian.AppendUint64(b, v)
	}
	return b
}
