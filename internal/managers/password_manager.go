// Package managers contains the password manager, which combines a
// server-wide secret (pepper) with the per-password salted bcrypt hash.
// The pepper defends against a full database compromise: without the
// server-held secret, the stored hashes cannot be attacked offline.
package managers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"kanzlei-server/internal/config"
)

// TokenLength is the byte length of generated one-time tokens. The
// hex-encoded form is twice as long.
const TokenLength = 32

// PasswordMgr defines the interface for password hashing and one-time token generation.
type PasswordMgr interface {
	HashPassword(plaintext string) (string, error)
	ComparePassword(plaintext, hash string) bool
	GenerateToken() (string, error)
}

// PasswordManager implements PasswordMgr with an HMAC-SHA256 pepper
// pre-transform followed by bcrypt at the configured cost factor.
type PasswordManager struct {
	pepper []byte
	cost   int
}

// NewPasswordManager creates a PasswordManager. It fails if the pepper is
// unset, since hashing without the server secret must never happen silently.
func NewPasswordManager(pepper string, cost int) (PasswordMgr, error) {
	if pepper == "" {
		return nil, config.ErrMissingPepper
	}

	log.Info("Initializing password manager")
	return &PasswordManager{pepper: []byte(pepper), cost: cost}, nil
}

// HashPassword applies the keyed pre-transform and then bcrypt.
func (pm *PasswordManager) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(pm.applyPepper(plaintext), pm.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// ComparePassword reapplies the keyed transform and delegates to bcrypt's
// constant-time comparator. It returns false on any mismatch and never errors.
func (pm *PasswordManager) ComparePassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), pm.applyPepper(plaintext)) == nil
}

// GenerateToken returns a cryptographically secure random token, hex-encoded.
func (pm *PasswordManager) GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// applyPepper returns the hex HMAC of the plaintext under the server pepper.
// Hex keeps the bcrypt input at 64 bytes, under bcrypt's 72-byte limit.
func (pm *PasswordManager) applyPepper(plaintext string) []byte {
	mac := hmac.New(sha256.New, pm.pepper)
	mac.Write([]byte(plaintext))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
