package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the work factor the account data was originally
// hashed with. Raising it only affects hashes produced after the change;
// old hashes still verify.
const DefaultCost = 10

// Hasher wraps bcrypt with a fixed work factor. bcrypt salts each hash
// itself, so two hashes of the same password never match byte-for-byte,
// and comparison runs in constant time relative to the input.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plain matches the stored hash. A malformed hash
// is treated the same as a mismatch: the caller only ever learns
// "not authenticated", never a parse failure.
func (h *Hasher) Verify(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	return err == nil
}

// IsHashFormatError distinguishes a corrupted stored hash from a plain
// mismatch, for logging only. Callers must still deny access either way.
func IsHashFormatError(err error) bool {
	if err == nil || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}
	return true
}

// CompareHash is Verify with the underlying error exposed, for callers
// that want to log hash corruption separately.
func (h *Hasher) CompareHash(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
