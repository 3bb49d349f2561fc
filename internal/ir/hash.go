package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes returns the hex-encoded SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Hash computes the content hash of v: SHA-256 over its canonical JSON.
//
// The digest has no domain prefix so that hashes stay comparable with dump
// fixtures produced by other clients of the same API.
func Hash(v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("canonical hash: %w", err)
	}
	return HashBytes(data), nil
}

// MustHash is like Hash but panics on error.
// Use only for values known to be canonicalizable (test fixtures, constants).
func MustHash(v any) string {
	h, err := Hash(v)
	if err != nil {
		panic(err)
	}
	return h
}
