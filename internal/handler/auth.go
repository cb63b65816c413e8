package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/auth"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/service"
)

// AuthResponse is returned by signup and login. Token is omitted when token
// issuance is disabled.
type AuthResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
	Token   string     `json:"token,omitempty"`
}

type MeResponse struct {
	User model.User `json:"user"`
}

// AuthHandler serves /signup, /login and /me.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

// HandleSignup → POST /signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in, service.MsgSignupFieldsRequired); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	setTokenCookie(w, res)
	writeJSON(w, h.logger, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		User:    res.User,
		Token:   res.Token,
	})
}

// HandleLogin → POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in, service.MsgLoginFieldsRequired); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	setTokenCookie(w, res)
	writeJSON(w, h.logger, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}

// HandleMe → GET /me, behind auth.RequireAuth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, MeResponse{User: *user})
}

// setTokenCookie mirrors the issued token into an HttpOnly cookie so browser
// clients that never read the JSON token still authenticate on /me.
func setTokenCookie(w http.ResponseWriter, res *service.AuthResult) {
	if res.Token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
