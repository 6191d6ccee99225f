// Package auth — password hashing utilities.
//
// WHY SCRYPT?
// scrypt is a deliberately slow, memory-hard key derivation function. The
// slowness makes brute-force expensive, and the memory-hardness means GPU and
// ASIC rigs don't get their usual thousand-fold speedup — each guess needs
// tens of megabytes of RAM, not just ALU time.
//
// Unlike bcrypt, scrypt does not embed the salt in its output, so we store
// the salt in its own column next to the hash. Both are hex-encoded with
// fixed widths the account validator checks before anything is persisted:
//
//	salt: 16 random bytes  → 32 hex chars
//	hash: 64-byte key      → 128 hex chars
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256) —
// those fall to rainbow tables in minutes.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/scrypt"

	"github.com/sakif/task-manager/internal/apperror"
)

// scrypt parameters.
//
// N is the CPU/memory cost (must be a power of two), r the block size, p the
// parallelism. 32768/8/1 needs ~32MB per derivation and takes on the order
// of 100ms on a modern server — negligible for a login, brutal for an
// attacker guessing billions of candidates.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64 // bytes; 128 hex chars once encoded

	saltLen = 16 // bytes; 32 hex chars once encoded

	// MinPasswordLength is the strength-policy floor.
	MinPasswordLength = 8
)

// passwordSymbols is the punctuation set the strength policy accepts.
// Kept as a single string so ContainsAny can scan it directly.
const passwordSymbols = `!@#$%&*()_+-={[}]:;>.<,?/|\`

// ErrWeakPassword is returned by Derive when the password fails the strength
// policy. The message is part of the API contract — clients match on it.
var ErrWeakPassword = apperror.BadRequest("password", "Password doesn't meet the minimum requirements!")

// Credential is the derived, storable form of a password.
type Credential struct {
	Hash string // 128 hex chars
	Salt string // 32 hex chars
}

// PasswordService derives and verifies scrypt credentials.
//
// It's a struct (not free functions) so the cost parameter can be lowered in
// tests — a full-strength derivation takes ~100ms, and service tests that
// hash dozens of passwords would crawl at N=32768.
type PasswordService struct {
	n int
}

// NewPasswordService creates a PasswordService with production parameters.
func NewPasswordService() *PasswordService {
	return &PasswordService{n: scryptN}
}

// NewPasswordServiceForTest creates a PasswordService with a reduced CPU cost.
// Do NOT use in production — low N values are far too weak.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{n: 1024}
}

// Derive checks the strength policy, generates a fresh random salt, and
// derives the scrypt hash of (password, salt).
//
// STRENGTH POLICY:
// at least MinPasswordLength characters, with at least one lowercase letter,
// one uppercase letter, one digit, and one symbol from passwordSymbols.
// Failing any of these returns ErrWeakPassword — a single fixed message, so
// responses don't leak which rule a candidate missed.
func (p *PasswordService) Derive(password string) (Credential, error) {
	if !meetsPolicy(password) {
		return Credential{}, ErrWeakPassword
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, fmt.Errorf("auth: generating salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	hash, err := p.hash(password, saltHex)
	if err != nil {
		return Credential{}, err
	}

	return Credential{Hash: hash, Salt: saltHex}, nil
}

// Verify recomputes the hash of candidate with the stored salt and compares
// it to the stored hash.
//
// TIMING SAFETY:
// subtle.ConstantTimeCompare examines every byte regardless of where the
// first mismatch is, so an attacker can't learn hash prefixes from response
// times. A plain == or bytes.Equal would short-circuit and leak.
func (p *PasswordService) Verify(candidate, storedHash, storedSalt string) bool {
	computed, err := p.hash(candidate, storedSalt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// hash runs scrypt over (password, salt) and hex-encodes the key.
// The hex salt string is used as the scrypt salt bytes directly, matching
// how the stored value was produced — decoding it first would derive a
// different key and break every existing credential.
func (p *PasswordService) hash(password, saltHex string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(saltHex), p.n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("auth: deriving password hash: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// meetsPolicy reports whether password satisfies the strength rules.
func meetsPolicy(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	return lower && upper && digit && strings.ContainsAny(password, passwordSymbols)
}
