package auth

import "github.com/sakif/task-manager/internal/apperror"

// Ownership and immutability guards.
//
// Every read/update/delete of a caller-scoped record goes through these two
// functions BEFORE the operation runs. Centralizing the checks here (rather
// than burying them in SQL WHERE clauses) keeps the authorization policy in
// one greppable place, independent of the storage engine.
//
// Both return Unauthorized with a fixed per-context message — the messages
// are part of the API contract, so callers pass them in rather than this
// package guessing at wording.

// RequireOwner fails with Unauthorized(message) unless callerID owns the
// resource. It makes no statement about whether the resource exists; callers
// fetch first so a missing record surfaces as NotFound, not Unauthorized.
func RequireOwner(ownerID, callerID, message string) error {
	if ownerID != callerID {
		return apperror.Unauthorized(message)
	}
	return nil
}

// RequireUnchanged fails with Unauthorized(message) when an update submits a
// value for an immutable field that differs from the stored one. An empty
// submitted value means "field not present in the patch" and always passes.
func RequireUnchanged(submitted, current, message string) error {
	if submitted != "" && submitted != current {
		return apperror.Unauthorized(message)
	}
	return nil
}
