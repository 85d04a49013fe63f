package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeyParams identifies one logical tool request for key derivation. Two
// requests with the same category and logically-equal arguments must always
// produce the same key, regardless of argument order, whitespace, letter
// case, or Unicode representation of identifiers.
type KeyParams struct {
	// Category the result will be cached under.
	Category Category

	// Args are the request arguments by name. Secrets such as API keys must
	// never be included; they are part of transport, not of request identity.
	Args map[string]string
}

// GenerateKey derives the deterministic cache key for p. The key is the
// category name, a colon, and the hex SHA256 of the normalized, name-sorted
// argument set. Embedding the category keeps keys from distinct categories
// disjoint even for identical argument sets.
func GenerateKey(p KeyParams) (string, error) {
	if !p.Category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}

	names := make([]string, 0, len(p.Args))
	for name := range p.Args {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		// Unit separator between name and value, record separator between
		// pairs, so ("ab","c") and ("a","bc") cannot collide.
		h.Write([]byte(normalizeArg(name)))
		h.Write([]byte{0x1f})
		h.Write([]byte(normalizeArg(p.Args[name])))
		h.Write([]byte{0x1e})
	}

	return string(p.Category) + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// normalizeArg canonicalizes one argument so representation differences do
// not split cache entries: Unicode is NFKC-normalized (Korean corp names
// arrive in both composed and compatibility forms), whitespace runs collapse
// to a single space, surrounding whitespace is dropped, and letters are
// lower-cased.
func normalizeArg(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// categoryOfKey extracts the category prefix from a derived key. It returns
// the empty category when the key has no known prefix, which the engine
// treats as uncategorized for accounting purposes.
func categoryOfKey(key string) Category {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return ""
	}
	c := Category(key[:idx])
	if !c.Valid() {
		return ""
	}
	return c
}
