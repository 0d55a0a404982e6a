package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/parkflow/parkflow/internal/auth"
	"github.com/parkflow/parkflow/internal/middleware"
	"github.com/parkflow/parkflow/internal/model"
	"github.com/parkflow/parkflow/internal/repository"
	"github.com/parkflow/parkflow/internal/service"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth_token"

const internalErrorMessage = "Internal server error"

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	Error         string            `json:"error,omitempty"`
	Authenticated bool              `json:"authenticated"`
	User          *model.PublicUser `json:"user,omitempty"`
}

// AuthHandler handles the session lifecycle endpoints.
type AuthHandler struct {
	svc          *service.AuthService
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie adds the Secure
// attribute to session cookies and should be set in production.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.svc.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.handleServiceError(w, r, "signup", err)
		return
	}

	h.setSessionCookie(w, res.Session)
	h.logger.Info("user_registered",
		"request_id", middleware.GetRequestID(r.Context()),
		"user_id", res.User.ID,
		"session", auth.Fingerprint(res.Session.Token),
	)

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    res.User.ToPublic(),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, "login", err)
		return
	}

	h.setSessionCookie(w, res.Session)
	h.logger.Info("user_logged_in",
		"request_id", middleware.GetRequestID(r.Context()),
		"user_id", res.User.ID,
		"session", auth.Fingerprint(res.Session.Token),
	)

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Logged in successfully",
		User:    res.User.ToPublic(),
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if err := h.svc.Logout(r.Context(), token); err != nil {
		h.handleServiceError(w, r, "logout", err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)

	user, err := h.svc.CurrentUser(r.Context(), token)
	switch {
	case err == nil:
		public := user.ToPublic()
		writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &public})
	case errors.Is(err, service.ErrNotAuthenticated):
		if token != "" {
			h.clearSessionCookie(w)
		}
		writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
	default:
		h.logStoreError(r, "me", err)
		writeJSON(w, http.StatusInternalServerError, meResponse{Error: internalErrorMessage})
	}
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "User with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		h.logStoreError(r, op, err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

// logStoreError records the detail that is withheld from the client.
func (h *AuthHandler) logStoreError(r *http.Request, op string, err error) {
	attrs := []any{
		"request_id", middleware.GetRequestID(r.Context()),
		"op", op,
		"error", err,
	}
	var se *repository.StoreError
	if errors.As(err, &se) && se.Code != "" {
		attrs = append(attrs, "sqlstate", se.Code)
	}
	h.logger.Error("internal_error", attrs...)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
