/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
)

// Picker chooses content (items and clues). It carries no secrets, so a
// seeded generator is fine and keeps tests reproducible.
type Picker interface {
	IntN(n int) int
}

// NewPicker returns a PCG generator seeded from crypto/rand.
func NewPicker() (Picker, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}

	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(b[:8]),
		binary.LittleEndian.Uint64(b[8:]),
	)), nil
}

// secretIndex draws a uniform index in [0, n) from a cryptographically
// strong reader. Samples at or above the largest multiple of n are rejected,
// so there is no modulo bias.
func secretIndex(r io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("secret index over empty range: %d", n)
	}

	un := uint64(n)
	limit := math.MaxUint64 - math.MaxUint64%un

	var b [8]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("draw secret index: %w", err)
		}

		if v := binary.BigEndian.Uint64(b[:]); v < limit {
			return int(v % un), nil
		}
	}
}
