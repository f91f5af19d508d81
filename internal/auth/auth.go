//go:generate mockgen -source ./auth.go -destination=./mocks/auth.go -package=mock_auth
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bayoubeans/coffee-orders/internal/repository"
)

type LoginResult int

const (
	LoginSuccess LoginResult = iota
	LoginUserNotFound
	LoginWrongSecret
)

func (r LoginResult) String() string {
	switch r {
	case LoginSuccess:
		return "success"
	case LoginUserNotFound:
		return "user not found"
	case LoginWrongSecret:
		return "wrong secret"
	default:
		return "unknown"
	}
}

type UserRepository interface {
	FetchByName(ctx context.Context, userName string) (*repository.User, error)
}

// CredentialVerifier compares a stored secret with a supplied one. Swapping
// the implementation changes how secrets are stored without touching the
// Authenticator's control flow.
type CredentialVerifier interface {
	Verify(stored, supplied string) bool
}

// PlaintextVerifier matches the legacy deployment where Users records hold
// the secret verbatim.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier expects the stored secret to be a bcrypt hash.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// HashSecret produces a stored form suitable for BcryptVerifier.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type Authenticator struct {
	users    UserRepository
	verifier CredentialVerifier
}

func NewAuthenticator(users UserRepository, verifier CredentialVerifier) *Authenticator {
	return &Authenticator{users: users, verifier: verifier}
}

// Login looks up exactly one user record by name and compares the supplied
// secret. Store failures come back as a non-nil error; the caller reports
// those as the store being unavailable.
func (a *Authenticator) Login(ctx context.Context, userName, secret string) (LoginResult, error) {
	user, err := a.users.FetchByName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return LoginUserNotFound, nil
		}
		return 0, fmt.Errorf("failed to look up user %s: %w", userName, err)
	}

	if !a.verifier.Verify(user.Password, secret) {
		return LoginWrongSecret, nil
	}
	return LoginSuccess, nil
}
