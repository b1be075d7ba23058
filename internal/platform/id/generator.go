package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator mints the opaque identifiers handed out in API responses.
// Athletes, events, results, and history entries all share one scheme.
type Generator interface {
	NewID() (string, error)
}

const randomIDBytes = 16

// RandomGenerator produces 32-char hex ids from crypto/rand. No ordering
// guarantees; sortable ids are not needed because every listing sorts on a
// domain attribute.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	raw := make([]byte, randomIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate random id: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
