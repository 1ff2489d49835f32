package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/service"

	"go.uber.org/zap"
)

// CookieConfig session cookie attributes.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   service.AuthService
	users  service.UserService
	cookie CookieConfig
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, users service.UserService, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookie: cookie, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or an HTML form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid form body"))
			return c, false
		}
		c.Username = r.PostFormValue("username")
		c.Password = r.PostFormValue("password")
		return c, true
	}
	return c, decodeBody(w, r, &c)
}

type sessionInfo struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Door     string      `json:"door,omitempty"`
}

func infoOf(u *domain.User) sessionInfo {
	return sessionInfo{Username: u.Username, Role: u.Role, Door: u.Door}
}

// Login POST /login {username, password}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	sess, err := h.auth.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		writeError(w, r, h.logger, "Login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(h.auth.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, OkMessage("Logged in", infoOf(&sess.User)))
}

// Logout GET|POST /logout. Always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.logger.Warn("Logout failed", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, OkMessage[any]("Logged out", nil))
}

// UserRole GET /user-role
func (h *AuthHandler) UserRole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(infoOf(UserFromContext(r.Context()))))
}

// CreateAdmin POST /createadmin {username, password}. Open until the first main-admin exists.
func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	user, err := h.users.CreateMainAdmin(r.Context(), UserFromContext(r.Context()), c.Username, c.Password)
	if err != nil {
		writeError(w, r, h.logger, "CreateAdmin", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(confirm("Main admin %s created", user.Username), user))
}

// ListUsers GET /users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(users))
}

// CreateUser POST /users {username, password, role, door}
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.users.CreateUser(r.Context(), UserFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, "CreateUser", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(confirm("User %s created", user.Username), user))
}

// UpdateUser PUT /users/{id} {password?, role?, door?}
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.users.UpdateUser(r.Context(), UserFromContext(r.Context()), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, h.logger, "UpdateUser", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(confirm("User %s updated", user.Username), user))
}

// DeleteUser DELETE /users/{id}
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), UserFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, "DeleteUser", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("User deleted", nil))
}
