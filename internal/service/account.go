// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces ownership, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept primitives and param structs, never *http.Request, and
// return domain errors from the apperror taxonomy, never status codes. The
// handler translates both directions. Each service takes its repository as
// an interface so tests inject in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/auth"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// Account field limits, mirrored by the database column widths.
const (
	MinNameLength     = 3
	MaxNameLength     = 75
	MinEmailLength    = 10
	MaxEmailLength    = 50
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// emailPattern is a shape heuristic, not RFC 5322 validation: some word
// characters, an @, a domain-ish remainder with a 2-3 letter TLD. It is
// deliberately unanchored and deliberately imperfect — the same pattern
// classifies login identifiers, and changing it would reclassify
// identifiers that already work.
var emailPattern = regexp.MustCompile(`\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+`)

// usernamePattern allows word characters and hyphens only, anchored.
var usernamePattern = regexp.MustCompile(`^[\w-]*$`)

// Per-context authorization messages for account operations. Fixed strings,
// part of the API contract.
const (
	msgFetchOtherUser  = "It's not possible to fetch other users' information!"
	msgModifyOtherUser = "It's not possible to modify other users' information!"
	msgDeleteOtherUser = "It's not possible to delete other users' accounts!"
	msgAlterUserID     = "It's not allowed to alter the user's ID!"
)

// AccountService handles registration, login, and account CRUD.
type AccountService struct {
	repo      repository.AccountRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	repo repository.AccountRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterParams is the input to Register. ID is optional — when empty the
// repository assigns one.
type RegisterParams struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register derives a credential from the submitted password, validates the
// account fields, and inserts the account.
//
// Order matters: the password policy runs first (the original API rejected a
// weak password before touching any other field), then field validation in
// name → email → username order, then the insert — whose unique indexes
// produce Conflict in id → email → username precedence.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*model.Account, error) {
	cred, err := s.passwords.Derive(params.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           params.ID,
		Name:         params.Name,
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: cred.Hash,
		Salt:         cred.Salt,
	}

	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		slog.String("id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// Login resolves the identifier, verifies the password, and issues a session
// token.
//
// The identifier is classified by shape: matching the email heuristic routes
// to the email lookup, anything else to the username lookup. An unknown
// identifier is NotFound ("User not found!"), a bad password Unauthorized
// ("Incorrect password!") — the two failures are distinguishable on purpose,
// matching the contract this API has always had.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (string, error) {
	var (
		login *model.LoginAccount
		err   error
	)
	if emailPattern.MatchString(identifier) {
		login, err = s.repo.GetLoginByEmail(ctx, identifier)
	} else {
		login, err = s.repo.GetLoginByUsername(ctx, identifier)
	}
	if err != nil {
		return "", err
	}

	if !s.passwords.Verify(password, login.PasswordHash, login.Salt) {
		return "", apperror.Unauthorized("Incorrect password!")
	}

	token, err := s.tokens.Issue(login.ID, login.Name)
	if err != nil {
		return "", fmt.Errorf("service: issuing token for account %s: %w", login.ID, err)
	}

	s.logger.Info("account logged in", slog.String("id", login.ID))

	return token, nil
}

// GetByID returns the account with the given id.
//
// The identity check runs before the fetch: a caller asking for any id other
// than its own gets Unauthorized whether or not that account exists.
func (s *AccountService) GetByID(ctx context.Context, id, callerID string) (*model.Account, error) {
	if err := auth.RequireOwner(id, callerID, msgFetchOtherUser); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateParams is the patch applied by Update. Empty strings mean "leave the
// field alone"; a non-empty ID that differs from the stored one is an
// immutability violation.
type UpdateParams struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Update applies a patch to the caller's own account.
//
// Flow: identity check → fetch → immutable-id check → re-derive credential
// if a new password was submitted → apply remaining fields → re-validate →
// persist. Conflicts and validation failures use the same taxonomy as
// Register.
func (s *AccountService) Update(ctx context.Context, id, callerID string, params UpdateParams) (*model.Account, error) {
	if err := auth.RequireOwner(id, callerID, msgModifyOtherUser); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.RequireUnchanged(params.ID, account.ID, msgAlterUserID); err != nil {
		return nil, err
	}

	if params.Password != "" {
		cred, err := s.passwords.Derive(params.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = cred.Hash
		account.Salt = cred.Salt
	}

	if params.Name != "" {
		account.Name = params.Name
	}
	if params.Email != "" {
		account.Email = params.Email
	}
	if params.Username != "" {
		account.Username = params.Username
	}

	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account updated", slog.String("id", account.ID))

	return account, nil
}

// Delete removes the caller's own account. Owned tasks go with it — the
// cascade is the storage engine's job.
func (s *AccountService) Delete(ctx context.Context, id, callerID string) error {
	if err := auth.RequireOwner(id, callerID, msgDeleteOtherUser); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("id", id))

	return nil
}

// validateAccount enforces the account field rules, reporting the first
// violation in name → email → username order with the field's legacy
// message. The messages quote the submitted value verbatim.
func validateAccount(a *model.Account) error {
	if len(a.Name) < MinNameLength || len(a.Name) > MaxNameLength {
		return apperror.BadRequest("name",
			fmt.Sprintf("The value %q does not match the name requirements!", a.Name))
	}

	if len(a.Email) < MinEmailLength || len(a.Email) > MaxEmailLength ||
		!emailPattern.MatchString(a.Email) {
		return apperror.BadRequest("email",
			fmt.Sprintf("The value %q is not a valid e-mail address!", a.Email))
	}

	if len(a.Username) < MinUsernameLength || len(a.Username) > MaxUsernameLength ||
		!usernamePattern.MatchString(a.Username) {
		return apperror.BadRequest("username",
			fmt.Sprintf("The value %q is not a valid username!", a.Username))
	}

	return nil
}
