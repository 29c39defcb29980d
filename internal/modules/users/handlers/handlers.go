// Package handlers provides HTTP handlers for registration, login and
// profile management.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/users"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles user HTTP requests
type Handler struct {
	service *users.Service
	tokens  *auth.TokenManager
	log     zerolog.Logger
}

// NewHandler creates a new users handler
func NewHandler(service *users.Service, tokens *auth.TokenManager, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		log:     log.With().Str("handler", "users").Logger(),
	}
}

// HandleRegister creates a local account and returns the user with a token.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var reg users.Registration
	if err := web.Decode(r, &reg); err != nil {
		web.Error(w, h.log, err)
		return
	}

	user, err := h.service.Register(reg)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

// HandleLogin authenticates email and password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	user, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// HandleGoogleLogin verifies a Google ID token and finds or creates the
// account behind it.
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	user, err := h.service.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// HandleGetProfile returns the authenticated user's profile.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	user, err := h.service.Get(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, user)
}

// HandleCompleteProfile fills in the PAN and mobile details a Google
// signup leaves empty.
func (h *Handler) HandleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var update users.ProfileUpdate
	if err := web.Decode(r, &update); err != nil {
		web.Error(w, h.log, err)
		return
	}

	user, err := h.service.CompleteProfile(principal.UserID, update)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, user *users.User) {
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		web.Error(w, h.log, domain.Executionf("token issue", err))
		return
	}

	web.JSON(w, h.log, status, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}
