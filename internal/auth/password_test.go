package auth

import (
	"errors"
	"testing"

	"github.com/sakif/task-manager/internal/apperror"
)

// newTestPasswordService uses the reduced scrypt cost — full-strength
// derivation takes ~100ms and these tests derive a lot of credentials.
func newTestPasswordService(t *testing.T) *PasswordService {
	t.Helper()
	return NewPasswordServiceForTest()
}

// =========================================================================
// DERIVE TESTS
// =========================================================================

func TestDerive_ValidPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	cred, err := ps.Derive("#testUser01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	if len(cred.Hash) != 128 {
		t.Errorf("hash length = %d, want 128 hex chars", len(cred.Hash))
	}
	if len(cred.Salt) != 32 {
		t.Errorf("salt length = %d, want 32 hex chars", len(cred.Salt))
	}
}

func TestDerive_FreshSaltEachTime(t *testing.T) {
	ps := newTestPasswordService(t)

	a, err := ps.Derive("#testUser01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	b, err := ps.Derive("#testUser01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	// Same password, different salt — and therefore a different hash.
	if a.Salt == b.Salt {
		t.Error("two derivations produced the same salt")
	}
	if a.Hash == b.Hash {
		t.Error("two derivations produced the same hash")
	}
}

func TestDerive_StrengthPolicy(t *testing.T) {
	ps := newTestPasswordService(t)

	weak := []struct {
		name     string
		password string
	}{
		{"too short", "#aB1"},
		{"no lowercase", "#TESTUSER01"},
		{"no uppercase", "#testuser01"},
		{"no digit", "#testUserAA"},
		{"no symbol", "testUser011"},
		{"empty", ""},
	}

	for _, tc := range weak {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ps.Derive(tc.password)
			if err == nil {
				t.Fatalf("Derive(%q) should fail the strength policy", tc.password)
			}
			if !errors.Is(err, apperror.ErrBadRequest) {
				t.Errorf("Derive(%q) error kind = %v, want ErrBadRequest", tc.password, err)
			}
			if err.Error() != "Password doesn't meet the minimum requirements!" {
				t.Errorf("Derive(%q) message = %q", tc.password, err.Error())
			}
		})
	}
}

// =========================================================================
// VERIFY TESTS
// =========================================================================

func TestVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService(t)

	cred, err := ps.Derive("#bettyB01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	if !ps.Verify("#bettyB01", cred.Hash, cred.Salt) {
		t.Error("Verify() = false for the original password")
	}
}

func TestVerify_SingleCharacterMutation(t *testing.T) {
	ps := newTestPasswordService(t)

	password := "#bettyB01"
	cred, err := ps.Derive(password)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	// Mutate each position in turn; every mutation must fail.
	for i := range password {
		mutated := []byte(password)
		mutated[i] ^= 0x01
		if ps.Verify(string(mutated), cred.Hash, cred.Salt) {
			t.Errorf("Verify() = true for mutation at position %d (%q)", i, mutated)
		}
	}
}

func TestVerify_WrongSalt(t *testing.T) {
	ps := newTestPasswordService(t)

	cred, err := ps.Derive("#bettyB01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	other, err := ps.Derive("#bettyB01")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	// Right password, somebody else's salt — must not verify.
	if ps.Verify("#bettyB01", cred.Hash, other.Salt) {
		t.Error("Verify() = true with a mismatched salt")
	}
}
