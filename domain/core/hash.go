package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash is a hex-encoded SHA-256 digest
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// InputFingerprint hashes labels and grouped observations so two runs over
// the same input can be recognised. Group boundaries are part of the digest.
func InputFingerprint(labels []string, groups [][]float64) Hash {
	h := sha256.New()
	var buf [8]byte
	for _, label := range labels {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(label)))
		h.Write(buf[:])
		h.Write([]byte(label))
	}
	for _, group := range groups {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(group)))
		h.Write(buf[:])
		for _, v := range group {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
