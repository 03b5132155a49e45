// Package auth verifies a servant's name and secret against the credential
// hashes held in the snapshot.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/scope"
)

// ErrInvalidCredentials is returned for an unknown name or a wrong secret.
var ErrInvalidCredentials = errors.New("incorrect name or password")

// Cost is the bcrypt cost used by HashCredential.
var Cost = bcrypt.DefaultCost

// HashCredential returns the bcrypt hash stored for a secret.
func HashCredential(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("credential must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(h), nil
}

// NormalizeName trims a name and puts it in NFC form so that visually equal
// names typed on different keyboards compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Authenticate returns the identity of the servant called name whose stored
// hash matches secret.
//
// A snapshot loaded from a store without a credential column cannot
// authenticate anyone and yields a MISSING_CREDENTIAL precondition error.
func Authenticate(snap *model.Snapshot, name, secret string) (scope.Identity, error) {
	if !snap.Schema.HasCredential {
		return scope.Identity{}, model.NewMissingCredentialError()
	}

	want := NormalizeName(name)
	for _, sv := range snap.Servants {
		if NormalizeName(sv.Name) != want {
			continue
		}
		if sv.Credential == "" {
			return scope.Identity{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(sv.Credential), []byte(secret)); err != nil {
			return scope.Identity{}, ErrInvalidCredentials
		}
		role, err := model.ParseRole(string(sv.Role))
		if err != nil {
			return scope.Identity{}, fmt.Errorf("servant %d: %w", sv.ID, err)
		}
		return scope.Identity{ServantID: sv.ID, Name: sv.Name, Role: role}, nil
	}
	return scope.Identity{}, ErrInvalidCredentials
}
