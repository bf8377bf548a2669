// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import "math/rand/v2"

const (
	// StringLength is the length of every generated string value.
	StringLength = 10
	// alphanumeric is the alphabet of generated string values.
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RandomInteger returns a value drawn uniformly from the full int32 range.
func RandomInteger(source *rand.Rand) int32 {
	return int32(source.Uint32())
}

// RandomBoolean returns true or false with equal probability.
func RandomBoolean(source *rand.Rand) bool {
	return source.Uint32()&1 == 1
}

// RandomString returns StringLength characters drawn independently from [A-Za-z0-9].
func RandomString(source *rand.Rand) string {
	buf := make([]byte, StringLength)
	for index := range buf {
		buf[index] = alphanumeric[source.IntN(len(alphanumeric))]
	}

	return string(buf)
}

// RandomNumber returns a float in [0,1) scaled by a full-range int32.
//
// The result has no defined distribution and is often a whole number
// (for example 123213.0). Callers must not rely on a fractional part.
func RandomNumber(source *rand.Rand) float32 {
	return source.Float32() * float32(RandomInteger(source))
}

// newDocumentSource builds the randomness source for one document.
// Seeded sources depend only on seed and document index.
func newDocumentSource(seed *uint64, index int) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, uint64(index)))
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
