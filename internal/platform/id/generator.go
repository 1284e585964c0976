package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator mints the opaque identifiers handed out for players, fixtures,
// match runs, and transfer offers.
type Generator interface {
	NewID() (string, error)
}

// idBytes of entropy per identifier, hex-encoded to twice that many chars.
const idBytes = 16

// RandomGenerator backs Generator with crypto/rand.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("draw id entropy: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
