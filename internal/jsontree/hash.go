package jsontree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for document hashes. The version suffix leaves room for
// a future change of algorithm.
const (
	DomainIndex    = "routines/index/v1"
	DomainRoutines = "routines/routines/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashBytes hashes already-canonical bytes under domain.
func HashBytes(domain string, canonical []byte) string {
	return hashWithDomain(domain, canonical)
}

// Hash canonicalizes v and hashes it under domain.
func Hash(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}
