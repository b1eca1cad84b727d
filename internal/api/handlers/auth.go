package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/inkpad/inkpad/internal/api/middleware"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/logger"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/session"
	"github.com/inkpad/inkpad/pkg/models"
)

// stateCookieName carries the OAuth CSRF state between the redirect to the
// provider and the callback.
const stateCookieName = "inkpad_oauth_state"

// genericLoginFailure is the single message returned for every credential
// failure, so the API does not reveal which accounts exist.
const genericLoginFailure = "Invalid email or password"

// AuthHandler handles registration, login, logout, session introspection,
// and the Google federation endpoints.
type AuthHandler struct {
	sessions     *session.Manager
	local        *auth.Local
	registrar    *auth.Registrar
	google       *auth.Google
	metrics      *metrics.Metrics
	clientOrigin string
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. The metrics recorder may be nil.
func NewAuthHandler(
	sessions *session.Manager,
	local *auth.Local,
	registrar *auth.Registrar,
	google *auth.Google,
	m *metrics.Metrics,
	clientOrigin string,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		local:        local,
		registrar:    registrar,
		google:       google,
		metrics:      m,
		clientOrigin: clientOrigin,
		secureCookie: secureCookie,
	}
}

// CredentialsRequest is the request body for POST /register and POST /login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the sanitized account representation for API responses.
// The password hash never leaves the server.
type UserResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// LoginResponse is the response body for a successful POST /login.
type LoginResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// MeResponse is the response body for GET /me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// MessageResponse is the generic single-message success body.
type MessageResponse struct {
	Message string `json:"message"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Provider: u.Provider,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.registrar.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			h.metrics.RecordRegistration(metrics.OutcomeInvalid)
			ValidationFailed(w, verr.Errors)
		case errors.Is(err, models.ErrDuplicateUser):
			h.metrics.RecordRegistration(metrics.OutcomeConflict)
			BadRequest(w, "Email already exists.")
		default:
			h.metrics.RecordRegistration(metrics.OutcomeFailure)
			logger.Error("registration failed", "error", err)
			InternalServerError(w, "Server error")
		}
		return
	}

	h.metrics.RecordRegistration(metrics.OutcomeSuccess)
	logger.Info("user registered", "user_id", user.ID)
	WriteJSONCreated(w, MessageResponse{Message: "User registered!"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		BadRequest(w, "Email and password are required")
		return
	}

	user, err := h.local.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if isCredentialFailure(err) {
			h.metrics.RecordLogin(metrics.MethodLocal, metrics.OutcomeFailure)
			logger.Debug("login rejected", "reason", err)
			Unauthorized(w, genericLoginFailure)
			return
		}
		logger.Error("login failed", "error", err)
		InternalServerError(w, "Server error")
		return
	}

	if err := h.sessions.Create(r.Context(), w, user); err != nil {
		logger.Error("failed to create session", "error", err)
		InternalServerError(w, "Server error")
		return
	}

	h.metrics.RecordLogin(metrics.MethodLocal, metrics.OutcomeSuccess)
	WriteJSONOK(w, LoginResponse{
		Message: "Login successful",
		User:    userToResponse(user),
	})
}

// Me handles GET /me. Runs behind the authorization gate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		Unauthorized(w, "Unauthorized")
		return
	}
	WriteJSONOK(w, MeResponse{User: userToResponse(user)})
}

// Logout handles POST /logout: destroys the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		logger.Error("logout failed", "error", err)
		InternalServerError(w, "Logout failed")
		return
	}
	WriteJSONOK(w, MessageResponse{Message: "Logged out"})
}

// GoogleLogin handles GET /auth/google: sets the CSRF state cookie and
// redirects to the provider.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Enabled() {
		NotFound(w, "Google sign-in is not configured")
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.LoginURL(state), http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback: verifies state,
// exchanges the code, resolves the account, and establishes a session.
// Failures redirect back to the client's login page rather than rendering
// an API error, since the browser is mid-navigation.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.google.Enabled() {
		NotFound(w, "Google sign-in is not configured")
		return
	}

	h.clearStateCookie(w)

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		logger.Warn("google callback with missing or mismatched state")
		h.redirectLoginFailure(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginFailure(w, r)
		return
	}

	user, err := h.google.Authenticate(r.Context(), code)
	if err != nil {
		h.metrics.RecordLogin(metrics.MethodGoogle, metrics.OutcomeFailure)
		logger.Error("google authentication failed", "error", err)
		h.redirectLoginFailure(w, r)
		return
	}

	if err := h.sessions.Create(r.Context(), w, user); err != nil {
		logger.Error("failed to create session", "error", err)
		h.redirectLoginFailure(w, r)
		return
	}

	h.metrics.RecordLogin(metrics.MethodGoogle, metrics.OutcomeSuccess)
	http.Redirect(w, r, h.clientOrigin, http.StatusFound)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) redirectLoginFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.clientOrigin+"/login", http.StatusFound)
}

// isCredentialFailure reports whether the error is a user-correctable
// credential failure, as opposed to a store outage.
func isCredentialFailure(err error) bool {
	return errors.Is(err, models.ErrUserNotFound) ||
		errors.Is(err, models.ErrInvalidPassword) ||
		errors.Is(err, models.ErrNoLocalPassword) ||
		errors.Is(err, models.ErrInvalidEmail)
}
