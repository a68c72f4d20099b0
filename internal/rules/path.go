package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSelection = "wg/selection/v1"
	DomainContent   = "wg/content/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SelectionPath is the typed composite key identifying one select
// operation on one entity. Free-form concatenated string paths invite
// silent key collisions; hashing a canonical encoding of the full tuple
// does not.
//
// Namespace carries the granting ability-block id when the select was
// introduced by a granted ability, so the same authored operation can be
// granted twice (by different features) and keep distinct selections.
type SelectionPath struct {
	SourceKind  SourceKind
	SourceID    string
	OperationID string
	Namespace   string
}

// Hash computes the stable path key used in operation_data.selections.
// The key is stable across passes and across engine restarts given the
// same tuple.
func (p SelectionPath) Hash() (string, error) {
	obj := map[string]any{
		"source_kind":  string(p.SourceKind),
		"source_id":    p.SourceID,
		"operation_id": p.OperationID,
	}
	if p.Namespace != "" {
		obj["namespace"] = p.Namespace
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("selection path: %w", err)
	}
	return hashWithDomain(DomainSelection, canonical), nil
}

// MustHash is Hash for static path tuples that cannot fail.
// Panics on marshal failure; only identifiers go into paths.
func (p SelectionPath) MustHash() string {
	h, err := p.Hash()
	if err != nil {
		panic(err)
	}
	return h
}

// ContentHash computes a content-addressed fingerprint for an arbitrary
// canonicalizable structure. Recorded on evaluation results so a stored
// result can be matched to the exact content it was computed from.
func ContentHash(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return hashWithDomain(DomainContent, canonical), nil
}
