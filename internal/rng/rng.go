// Package rng provides reproducible per-identifier random streams.
//
// Each stream is seeded from SHA-256 over a domain prefix, the canonical
// identifier and the run seed. Two runs with the same seed draw identical
// values for the same identifier no matter in which order streams are
// created or how many other streams exist.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"

	"github.com/roach88/agentsim/internal/names"
)

// DomainStream separates stream seeds from any other use of the hash.
// The version suffix allows changing the derivation later.
const DomainStream = "agentsim/stream/v1"

// Seed derives the two 64-bit PCG seed words for identifier.
// Format: SHA256(domain + 0x00 + identifier + 0x00 + runSeed(LE)).
func Seed(runSeed uint64, identifier string) (uint64, uint64) {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], runSeed)

	h := sha256.New()
	h.Write([]byte(DomainStream))
	h.Write([]byte{0x00})
	h.Write([]byte(names.Canonical(identifier)))
	h.Write([]byte{0x00})
	h.Write(seed[:])
	sum := h.Sum(nil)

	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}

// Stream returns a fresh generator for identifier.
func Stream(runSeed uint64, identifier string) *rand.Rand {
	s1, s2 := Seed(runSeed, identifier)
	return rand.New(rand.NewPCG(s1, s2))
}

// Source hands out one cached stream per identifier for a run.
// Not safe for concurrent use; the kernel is single-threaded.
type Source struct {
	seed    uint64
	streams map[string]*rand.Rand
}

// NewSource creates a Source for a run seed.
func NewSource(seed uint64) *Source {
	return &Source{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Seed returns the run seed.
func (s *Source) Seed() uint64 { return s.seed }

// Stream returns the stream for identifier, creating it on first use.
func (s *Source) Stream(identifier string) *rand.Rand {
	key := names.Canonical(identifier)
	r, ok := s.streams[key]
	if !ok {
		r = Stream(s.seed, key)
		s.streams[key] = r
	}
	return r
}

// Agent returns the stream for a person id.
func (s *Source) Agent(id int) *rand.Rand {
	return s.Stream("person/" + strconv.Itoa(id))
}
