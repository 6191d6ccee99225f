package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// Compile-time check that *AccountRepo implements the interface.
// A missing method fails the build here instead of at a distant call site.
var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implements repository.AccountRepository on the shared pool.
type AccountRepo struct {
	conn *sql.DB
}

// Accounts returns the account repository view of the database.
func (db *DB) Accounts() *AccountRepo {
	return &AccountRepo{conn: db.conn}
}

// Create inserts a new account.
//
// An empty ID gets a generated xid (20 chars, URL-safe, time-sortable); a
// caller-supplied ID is kept so the id-conflict path is reachable. Unique
// violations come back as apperror.Conflict naming the offending field —
// see translateAccountConflict for the precedence.
func (r *AccountRepo) Create(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = xid.New().String()
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, name, email, username, password_hash, salt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Salt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if conflict := translateAccountConflict(err, account); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: creating account: %w", err)
	}

	return nil
}

// GetByID retrieves a single account, credential columns included.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, email, username, password_hash, salt, created_at, updated_at
		 FROM accounts
		 WHERE id = ?`,
		id,
	).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.Salt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User not found!")
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}

	return &account, nil
}

// GetLoginByEmail fetches the login projection for the given email.
func (r *AccountRepo) GetLoginByEmail(ctx context.Context, email string) (*model.LoginAccount, error) {
	return r.getLogin(ctx, "email", email)
}

// GetLoginByUsername fetches the login projection for the given username.
func (r *AccountRepo) GetLoginByUsername(ctx context.Context, username string) (*model.LoginAccount, error) {
	return r.getLogin(ctx, "username", username)
}

// getLogin selects only the columns password verification needs. The column
// name comes from the two exported wrappers above, never from user input.
func (r *AccountRepo) getLogin(ctx context.Context, column, value string) (*model.LoginAccount, error) {
	var login model.LoginAccount

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, password_hash, salt FROM accounts WHERE `+column+` = ?`,
		value,
	).Scan(&login.ID, &login.Name, &login.PasswordHash, &login.Salt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User not found!")
		}
		return nil, fmt.Errorf("sqlite: getting login by %s: %w", column, err)
	}

	return &login, nil
}

// Update persists the mutable account fields. The id never changes here —
// the service rejects attempts to alter it long before this runs.
func (r *AccountRepo) Update(ctx context.Context, account *model.Account) error {
	account.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET name = ?, email = ?, username = ?, password_hash = ?, salt = ?, updated_at = ?
		 WHERE id = ?`,
		account.Name,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Salt,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		if conflict := translateAccountConflict(err, account); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: updating account %s: %w", account.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User not found!")
	}

	return nil
}

// Delete removes an account. The tasks FK cascade removes its tasks in the
// same transaction — no application-level cleanup pass.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting account %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User not found!")
	}

	return nil
}

// translateAccountConflict turns a SQLite unique-constraint failure into the
// client-facing Conflict error, or returns nil for unrelated errors.
//
// SQLite reports one violated constraint per statement; when several would
// fire, checking id before email before username fixes the reported
// precedence. The driver has no structured field info, so we match the
// constraint name in the error text ("UNIQUE constraint failed:
// accounts.email").
func translateAccountConflict(err error, account *model.Account) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}

	switch {
	case strings.Contains(msg, "accounts.id"):
		return apperror.Conflict("id", fmt.Sprintf("The ID %s is already registered!", account.ID))
	case strings.Contains(msg, "accounts.email"):
		return apperror.Conflict("email", fmt.Sprintf("The email %s is already registered!", account.Email))
	case strings.Contains(msg, "accounts.username"):
		return apperror.Conflict("username", fmt.Sprintf("The username %s is already registered!", account.Username))
	default:
		return nil
	}
}
