package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/finance-tracker/internal/auth"
	mw "github.com/rogerio-castellano/finance-tracker/internal/http/middleware"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/rogerio-castellano/finance-tracker/internal/repo"
)

// Register godoc
// @Summary Register a new user and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "name, email and password"
// @Success 201 {object} models.AuthResult
// @Failure 400 {object} ErrorResponse "Invalid input or user already exists"
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := readJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if errs := validateRegister(req); len(errs) > 0 {
		h.fail(w, r, http.StatusBadRequest, "Invalid registration", errs...)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.serverError(w, r, applog.OpRegister, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hashed,
	})
	if errors.Is(err, repo.ErrDuplicatedValueUnique) {
		h.fail(w, r, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		h.serverError(w, r, applog.OpRegister, err)
		return
	}

	h.issue(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary Authenticate a user and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "email and password"
// @Success 200 {object} models.AuthResult
// @Failure 400 {object} ErrorResponse "Invalid credentials"
// @Failure 429 {object} ErrorResponse "Too many failed attempts"
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	client := mw.ClientIP(r)
	if h.guard.Banned(r.Context(), client) {
		h.fail(w, r, http.StatusTooManyRequests, "Too many failed login attempts, try again later")
		return
	}

	var req LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		h.serverError(w, r, applog.OpLogin, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.guard.Fail(r.Context(), client, r.URL.Path)
		h.fail(w, r, http.StatusBadRequest, "Invalid credentials")
		return
	}

	h.guard.Succeed(r.Context(), client)
	h.issue(w, r, http.StatusOK, user)
}

func (h *Handlers) issue(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.serverError(w, r, "issue token", err)
		return
	}
	h.respond(w, r, status, models.AuthResult{
		Token: token,
		User:  models.User{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/users/me [get]
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), mw.GetUserID(r))
	if errors.Is(err, repo.ErrUserNotFound) {
		h.fail(w, r, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "me", err)
		return
	}
	h.respond(w, r, http.StatusOK, user)
}
