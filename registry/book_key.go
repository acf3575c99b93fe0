package registry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// BookKey is the deterministic identifier of a book record, derived from
// the {title, author, publishedDate} triple. Two calls with the same triple
// always yield the same key.
type BookKey = string

// NewBookKey derives the BookKey for a book.
// Fields are length-delimited before hashing so that ("ab", "c") and
// ("a", "bc") can never collide.
func NewBookKey(title string, author string, publishedDate uint) BookKey {
	h := sha256.New()

	var length [8]byte

	binary.BigEndian.PutUint64(length[:], uint64(len(title)))
	h.Write(length[:])
	h.Write([]byte(title))

	binary.BigEndian.PutUint64(length[:], uint64(len(author)))
	h.Write(length[:])
	h.Write([]byte(author))

	binary.BigEndian.PutUint64(length[:], uint64(publishedDate))
	h.Write(length[:])

	return hex.EncodeToString(h.Sum(nil))
}
