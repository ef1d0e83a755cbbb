// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// PointID generates a deterministic vector point id for a catalog item.
// The same item id always maps to the same point, so re-ingestion overwrites
// instead of duplicating.
func PointID(itemID string) string {
	return SHA256Short([]byte("item:"+itemID), 32)
}

// CatalogFingerprint computes a fingerprint over item ids and their
// projection texts. Order-insensitive: ids are sorted before hashing.
func CatalogFingerprint(projections map[string]string) string {
	ids := make([]string, 0, len(projections))
	for id := range projections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%s\x00%s\x00", id, projections[id])
	}
	return hex.EncodeToString(h.Sum(nil))
}
