/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartBuildsRosterWithOneImpostor(t *testing.T) {
	setup := NewSetup(seededPicker())

	for n := MinPlayers; n <= MaxPlayers; n++ {
		for range 20 {
			round, err := setup.Start(sampleCatalog, n)
			require.NoError(t, err)

			require.Len(t, round.Players, n)

			impostors := 0
			for i, p := range round.Players {
				assert.Equal(t, i, p.ID)
				if p.Role.IsImpostor() {
					impostors++
				} else {
					assert.Equal(t, RoleNormal, p.Role)
				}
			}
			assert.Equal(t, 1, impostors, "players=%d", n)

			assert.Equal(t, 0, round.Current)
			assert.False(t, round.Revealed)
			assert.False(t, round.Ended)
			assert.NotEqual(t, uuid.Nil, round.ID)
			require.NotNil(t, round.Item)
			assert.Contains(t, round.Item.Clues, round.Clue)
			assert.Equal(t, PhaseAwaitingReveal, round.Phase())
		}
	}
}

func TestStartEmptyCatalog(t *testing.T) {
	setup := NewSetup(seededPicker())

	_, err := setup.Start(nil, 4)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = setup.Start(Catalog{{Word: "Dog"}, {Word: "", Clues: []string{"Barks"}}}, 4)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestStartSkipsMalformedItems(t *testing.T) {
	setup := NewSetup(seededPicker())
	catalog := Catalog{
		{Word: "Cat", Imagen: "cat.png"},
		{Word: "Dog", Clues: []string{"Barks"}, Imagen: "dog.png"},
		{Word: "Fish", Clues: []string{"fish"}},
	}

	for range 50 {
		round, err := setup.Start(catalog, 3)
		require.NoError(t, err)
		assert.Equal(t, "Dog", round.Item.Word)
		assert.Equal(t, "Barks", round.Clue)
	}
}

func TestStartRejectsInvalidPlayerCount(t *testing.T) {
	setup := NewSetup(seededPicker())

	for _, n := range []int{0, 2, 13} {
		_, err := setup.Start(sampleCatalog, n)
		assert.ErrorIs(t, err, ErrInvalidPlayerCount)
	}
}

func TestStartDoesNotShareCatalogClues(t *testing.T) {
	catalog := Catalog{{Word: "Dog", Clues: []string{"Barks"}, Imagen: "dog.png"}}

	round, err := NewSetup(seededPicker()).Start(catalog, 3)
	require.NoError(t, err)

	round.Item.Clues[0] = "changed"
	assert.Equal(t, "Barks", catalog[0].Clues[0])
}

func TestImpostorDrawnFromSecretSource(t *testing.T) {
	setup := NewSetup(seededPicker())

	// MaxUint64 is at the rejection limit for five players; 8 maps to 3.
	setup.secret = bytes.NewReader(secretBytes(math.MaxUint64, 8))

	round, err := setup.Start(sampleCatalog, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, round.Impostor())
}

func TestImpostorDrawFailure(t *testing.T) {
	setup := NewSetup(seededPicker())
	setup.secret = iotest.ErrReader(errors.New("entropy exhausted"))

	_, err := setup.Start(sampleCatalog, 4)
	assert.ErrorContains(t, err, "entropy exhausted")
}

func TestPickerSeedDoesNotFixImpostor(t *testing.T) {
	seen := make(map[int]bool)

	for range 200 {
		round, err := NewSetup(seededPicker()).Start(sampleCatalog, 4)
		require.NoError(t, err)
		seen[round.Impostor()] = true
	}

	assert.Greater(t, len(seen), 1, "same picker seed must not pin the impostor")
}

func TestImpostorUniformity(t *testing.T) {
	const (
		players = 6
		trials  = 12000
		// Chi-square critical value for 5 degrees of freedom well past p=0.0001.
		critical = 30.0
	)

	setup := NewSetup(seededPicker())

	counts := make([]int, players)
	for range trials {
		round, err := setup.Start(dogCatalog, players)
		require.NoError(t, err)
		counts[round.Impostor()]++
	}

	expected := float64(trials) / players

	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}

	assert.Less(t, chi, critical, "impostor distribution looks biased: %v", counts)
}

func TestSecretIndexRange(t *testing.T) {
	for n := 1; n <= MaxPlayers; n++ {
		r := bytes.NewReader(secretBytes(0, uint64(n-1), uint64(n), 1<<40+uint64(n)))

		for range 4 {
			i, err := secretIndex(r, n)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, n)
		}
	}

	_, err := secretIndex(bytes.NewReader(nil), 0)
	assert.Error(t, err)
}

func TestNewPicker(t *testing.T) {
	p, err := NewPicker()
	require.NoError(t, err)

	for range 100 {
		v := p.IntN(3)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
	}
}
