package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored password hashes use the format
// pbkdf2_sha256$<iterations>$<salt_b64>$<hash_b64> and stay verifiable after
// the iteration count is raised, since verification reads the count from the
// hash itself.
const (
	passwordHashScheme = "pbkdf2_sha256"
	passwordSaltBytes  = 16
	passwordKeyBytes   = 32

	// PasswordHashIterations is the PBKDF2 work factor for new hashes.
	PasswordHashIterations = 120000
)

// ErrEmptyPassword rejects hashing an empty password; reaching this is a
// caller bug, validation happens upstream.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword derives a PBKDF2-HMAC-SHA256 hash with a fresh random salt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, PasswordHashIterations, passwordKeyBytes, sha256.New)

	return strings.Join([]string{
		passwordHashScheme,
		strconv.Itoa(PasswordHashIterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword checks a password against a stored hash in constant time.
// Malformed or foreign hash values verify false rather than erroring, so a
// corrupted row behaves like a wrong password.
func VerifyPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != passwordHashScheme {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
