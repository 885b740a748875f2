// Package game holds the dice rules: drawing a face and deciding a round.
package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Faces is the number of sides on the die.
const Faces = 6

// Roller draws a die face in [1, Faces].
type Roller interface {
	Roll() int
}

// Dice is a Roller backed by a single generator that is seeded once and
// reused for every draw.
type Dice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDice returns Dice seeded from the operating system's secure source.
func NewDice() *Dice {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("game: seed dice: " + err.Error())
	}
	return NewSeededDice(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

// NewSeededDice returns Dice with a fixed seed, giving a reproducible sequence.
func NewSeededDice(seed1, seed2 uint64) *Dice {
	return &Dice{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Roll returns a uniformly distributed face in [1, Faces].
func (d *Dice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(Faces) + 1
}

// ValidFace reports whether v is a face the die can show.
func ValidFace(v int) bool {
	return v >= 1 && v <= Faces
}
