// Package daghash provides a generic hash type used to identify blocks and
// transactions throughout the DAG, along with helpers for comparing,
// formatting, and sorting them.
package daghash

import (
	"encoding/hex"
	"math/big"
	"sort"

	"github.com/pkg/errors"
)

// HashSize is the number of bytes a content hash occupies.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hex string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize is returned when a hex string exceeds MaxHashStringSize.
var ErrHashStrSize = errors.Errorf("max hash string length is %d bytes", MaxHashStringSize)

// Hash is a 32-byte content identifier for a block or transaction.
type Hash [HashSize]byte

// ZeroHash is the Hash value consisting of all zeros.
var ZeroHash = Hash{}

// String returns the Hash as the hexadecimal string of its bytes, in order.
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// CloneBytes returns a copy of the bytes backing the hash.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes of the hash to the passed slice. An error is
// returned if the slice has the wrong length.
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return errors.Errorf("invalid hash length of %d, want %d", nhlen, HashSize)
	}
	copy(hash[:], newHash)
	return nil
}

// IsEqual returns whether hash equals other. Two nil hashes are equal; a nil
// hash never equals a non-nil one.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// Cmp returns -1, 0, or 1 if hash is respectively lexicographically less
// than, equal to, or greater than other.
func (hash *Hash) Cmp(other *Hash) int {
	for i := 0; i < HashSize; i++ {
		if hash[i] < other[i] {
			return -1
		}
		if hash[i] > other[i] {
			return 1
		}
	}
	return 0
}

// Less returns whether a is lexicographically less than b. It is used to
// break coloring and ordering ties deterministically.
func Less(a, b *Hash) bool {
	return a.Cmp(b) < 0
}

// NewHash returns a new Hash from a byte slice. An error is returned if the
// slice has the wrong length.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hex string, accepting strings shorter
// than the full width by left-zero-padding them.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the hex string encoding of a hash into dst.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	copy(dst[:], reversedHash[:])
	return nil
}

// AreEqual returns whether two hash slices contain the same hashes in the
// same order.
func AreEqual(first, second []*Hash) bool {
	if len(first) != len(second) {
		return false
	}
	for i, hash := range first {
		if !hash.IsEqual(second[i]) {
			return false
		}
	}
	return true
}

// Strings converts a slice of hash pointers into their string encoding.
func Strings(hashes []*Hash) []string {
	strings := make([]string, len(hashes))
	for i, hash := range hashes {
		strings[i] = hash.String()
	}
	return strings
}

// JoinHashesStrings joins the string encoding of hashes with separator,
// analogous to strings.Join.
func JoinHashesStrings(hashes []*Hash, separator string) string {
	return joinStrings(Strings(hashes), separator)
}

func joinStrings(elems []string, sep string) string {
	switch len(elems) {
	case 0:
		return ""
	case 1:
		return elems[0]
	}
	out := elems[0]
	for _, e := range elems[1:] {
		out += sep + e
	}
	return out
}

// Sort sorts a slice of hash pointers in lexicographic order, in place.
func Sort(hashes []*Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return Less(hashes[i], hashes[j])
	})
}

// HashToBig converts a hash into a big.Int such that the hash's trailing
// bytes are the most significant bytes of the number (the hash is read as a
// little-endian integer).
func HashToBig(hash *Hash) *big.Int {
	buf := *hash
	for i := 0; i < HashSize/2; i++ {
		buf[i], buf[HashSize-1-i] = buf[HashSize-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}
