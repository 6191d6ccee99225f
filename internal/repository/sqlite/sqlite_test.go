package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sakif/task-manager/internal/model"
)

// newTestDB opens a throwaway database in the test's temp directory. A file
// (not :memory:) because every pool connection to :memory: gets its own
// empty database.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// testAccount builds a valid account row. The credential columns just need
// to look like hex — the repository doesn't inspect them.
func testAccount(username, email string) *model.Account {
	return &model.Account{
		Name:         "Test user",
		Email:        email,
		Username:     username,
		PasswordHash: "deadbeef",
		Salt:         "cafebabe",
	}
}

// seedAccount inserts an account and returns its generated id.
func seedAccount(t *testing.T, db *DB, username, email string) string {
	t.Helper()

	account := testAccount(username, email)
	if err := db.Accounts().Create(context.Background(), account); err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	return account.ID
}
