package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/task-manager/internal/auth"
	"github.com/sakif/task-manager/internal/service"
)

// AccountHandler exposes registration, login, and account CRUD over HTTP.
//
// The open endpoints (register, login) take no token; everything else runs
// behind auth.RequireAuth, so handlers read the caller from the request
// context and never touch the Authorization header themselves.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /user
// Body: {"name": ..., "email": ..., "username": ..., "password": ...}
// The response is the public projection — hash and salt never leave.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var params service.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account.PublicView())
}

// loginRequest is the login body. "user" is either an email or a username —
// the service classifies it by shape.
type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a session token.
//
// HTTP: POST /user/login
// The 200 response body is the bare token as a JSON string, which is what
// the existing web client expects.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.User, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// HandleAuth echoes the caller's decoded claims.
//
// HTTP: POST /user/auth (behind RequireAuth)
// The middleware already validated the token; reaching this handler IS the
// success condition, so we just return what the token said.
func (h *AccountHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

// HandleGet returns the caller's own account.
//
// HTTP: GET /user/{id} (behind RequireAuth; id must equal the caller's)
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), chi.URLParam(r, "id"), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account.PublicView())
}

// HandleUpdate patches the caller's own account.
//
// HTTP: PUT /user/{id} (behind RequireAuth)
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	var params service.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), claims.ID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account.PublicView())
}

// HandleDelete removes the caller's own account (and, via cascade, its
// tasks).
//
// HTTP: DELETE /user/{id} (behind RequireAuth)
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id"), claims.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
