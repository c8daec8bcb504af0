// Package generator produces random short codes for the URL shortener.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// charset defines the character set used for generating short codes.
// Uses alphanumeric characters (both cases) for a total of 62 possible characters.
// This gives us 62^6 = ~56 billion possible combinations for 6-character codes.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the short code length used when none is configured.
const DefaultLength = 6

// IntSource returns a uniformly distributed integer in [0, n).
// Tests inject a seeded source to make generation deterministic.
type IntSource func(n int) (int, error)

// Generator produces uniformly random short codes. It performs no collision
// checking and has no side effects, so callers are free to retry: uniqueness
// is enforced by the store at insert time.
type Generator struct {
	randInt IntSource
}

// New creates a Generator backed by the given integer source.
// A nil source selects the default crypto/rand backed source; statistical
// uniformity is the property that matters here, not unpredictability.
func New(src IntSource) *Generator {
	if src == nil {
		src = cryptoInt
	}
	return &Generator{randInt: src}
}

// Generate returns a random code of the requested length drawn from the
// 62-character alphanumeric alphabet. Non-positive lengths fall back to
// DefaultLength.
func (g *Generator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	code := make([]byte, length)
	for i := range code {
		n, err := g.randInt(len(charset))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[n]
	}
	return string(code), nil
}

func cryptoInt(n int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
