package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	currentKey     = "idxcur"
	metaPrefix     = "idxmeta"
	documentPrefix = "idxdoc"
	termPrefix     = "idxterm"
	factTermPrefix = "idxfterm"
	factPrefix     = "idxfact"
)

// makeMetaKey generates the metadata key for a snapshot fingerprint.
func makeMetaKey(fingerprint string) []byte {
	return []byte(fmt.Sprintf("%s:%s", metaPrefix, fingerprint))
}

// makeDocumentKey generates a key for a document record.
func makeDocumentKey(fingerprint, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentPrefix, fingerprint, id))
}

// makeTermKey generates a key for a term's posting list.
func makeTermKey(fingerprint, term string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", termPrefix, fingerprint, term))
}

// makeFactTermKey generates a key for a fact term's reference list.
func makeFactTermKey(fingerprint, term string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", factTermPrefix, fingerprint, term))
}

// makeFactKey generates a composite key for a stored fact.
// Format: prefix:fingerprint:category+ordinal
func makeFactKey(fingerprint string, category core.FactCategory, ordinal int) []byte {
	prefix := fmt.Sprintf("%s:%s:", factPrefix, fingerprint)
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 5 // 1 byte for category + 4 bytes for ordinal
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	buf[offset] = byte(category)
	offset++
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint32(buf[offset:], uint32(ordinal))
	return buf
}

// splitFactKey recovers the category and ordinal from a fact key suffix.
func splitFactKey(key []byte, prefixLen int) (core.FactCategory, int, bool) {
	suffix := key[prefixLen:]
	if len(suffix) != 5 {
		return 0, 0, false
	}
	category := core.FactCategory(suffix[0])
	ordinal := int(binary.BigEndian.Uint32(suffix[1:]))
	return category, ordinal, true
}

// prefixKey builds the iteration prefix for a snapshot section.
func prefixKey(section, fingerprint string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", section, fingerprint))
}
