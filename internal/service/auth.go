package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/security"
)

// AuthService owns registration and login. It never returns the password
// hash to its callers beyond the user.User struct, whose hash field is
// json-hidden; handlers trim further via user.Public.
type AuthService struct {
	store  UserStore
	hasher *security.Hasher
	log    *slog.Logger
}

func NewAuthService(store UserStore, hasher *security.Hasher, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{store: store, hasher: hasher, log: log}
}

// NormalizeEmail fixes the case policy explicitly: emails are compared
// and stored lowercase, so "Sam@X.com" and "sam@x.com" are one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the password and inserts the row. There is no
// read-then-write pre-check: the store's unique constraint is the
// authority on duplicates, so two concurrent registrations with the same
// email cannot both succeed.
func (s *AuthService) Register(ctx context.Context, email, password string) (user.User, error) {
	email = NormalizeEmail(email)

	hash, err := s.hasher.Hash(password)

	if err != nil {
		return user.User{}, err
	}

	u, err := s.store.Create(ctx, email, hash, user.RoleUser)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Login resolves the email and verifies the password. Unknown email and
// wrong password both come back as ErrInvalidCredentials so the response
// cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (user.User, error) {
	email = NormalizeEmail(email)

	u, err := s.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrInvalidCredentials
		}

		return user.User{}, err
	}

	err = s.hasher.CompareHash(u.PasswordHash, password)

	if err != nil {
		if security.IsHashFormatError(err) {
			// corrupted stored hash: still deny, but leave a trace for ops
			s.log.Error("stored password hash unreadable", "user_id", u.ID, "err", err)
		}

		return user.User{}, user.ErrInvalidCredentials
	}

	return u, nil
}
