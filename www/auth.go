package www

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"maintdeck/store"
)

const sessionName = "maintdeck_session"

var (
	errInvalidToken       = errors.New("invalid token")
	errInvalidCredentials = errors.New("invalid credentials")
)

type ctxKey int

const userKey ctxKey = 1

type sessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func currentUser(r *http.Request) *sessionUser {
	u, _ := r.Context().Value(userKey).(*sessionUser)
	return u
}

// canWrite gates mutations: viewers are read-only, everyone else writes.
func canWrite(role string) bool {
	switch role {
	case store.RoleAdmin, store.RoleSupervisor, store.RoleInspector:
		return true
	}
	return false
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.engine.DB().GetUserByUsername(req.Username)
	if err != nil || !user.Active {
		h.jsonError(w, errInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.jsonError(w, errInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.engine.DB().UpdateLastLogin(user.ID); err != nil {
		h.log.WithError(err).Debug("last login update failed")
	}

	sess, _ := h.sessions.Get(r, sessionName)
	sess.Values["user_id"] = user.ID
	sess.Values["username"] = user.Username
	sess.Values["role"] = user.Role
	if err := sess.Save(r, w); err != nil {
		h.jsonError(w, "session save failed", http.StatusInternalServerError)
		return
	}

	// API clients (CLI tooling, kiosk displays) get a bearer token too.
	token, err := h.issueToken(user)
	if err != nil {
		h.jsonError(w, "token issue failed", http.StatusInternalServerError)
		return
	}

	h.jsonOK(w, map[string]any{
		"user":  sessionUser{ID: user.ID, Username: user.Username, Role: user.Role},
		"token": token,
	})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.Options.MaxAge = -1
	sess.Save(r, w)
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, currentUser(r))
}

func (h *Handlers) issueToken(user *store.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *Handlers) parseToken(tokenString string) (*sessionUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, errInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, errInvalidToken
	}
	return &sessionUser{ID: int64(userID), Username: username, Role: role}, nil
}

// requireUser resolves the caller from the session cookie or a bearer token.
func (h *Handlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := h.userFromSession(r); user != nil {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
			return
		}
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			user, err := h.parseToken(strings.TrimPrefix(auth, "Bearer "))
			if err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
				return
			}
		}
		h.jsonError(w, "authentication required", http.StatusUnauthorized)
	})
}

func (h *Handlers) userFromSession(r *http.Request) *sessionUser {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return nil
	}
	id, ok := sess.Values["user_id"].(int64)
	if !ok {
		return nil
	}
	username, _ := sess.Values["username"].(string)
	role, _ := sess.Values["role"].(string)
	return &sessionUser{ID: id, Username: username, Role: role}
}

func (h *Handlers) requireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil || !canWrite(user.Role) {
			h.jsonError(w, "write access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil || user.Role != store.RoleAdmin {
			h.jsonError(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Username) < 3 {
		h.jsonError(w, "username must be at least 3 characters", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		h.jsonError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}
	if !store.ValidRole(req.Role) {
		h.jsonError(w, "invalid role", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.jsonError(w, "hash failed", http.StatusInternalServerError)
		return
	}
	user := &store.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}
	if err := h.engine.DB().CreateUser(user); err != nil {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.jsonOK(w, sessionUser{ID: user.ID, Username: user.Username, Role: user.Role})
}

type setUserActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handlers) setUserActive(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req setUserActiveRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if caller := currentUser(r); caller != nil && caller.ID == id && !req.Active {
		h.jsonError(w, "cannot deactivate your own account", http.StatusBadRequest)
		return
	}
	if _, err := h.engine.DB().GetUser(id); err != nil {
		h.jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	if err := h.engine.DB().SetUserActive(id, req.Active); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"id": id, "active": req.Active})
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.engine.DB().ListUsers()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]sessionUser, 0, len(users))
	for _, u := range users {
		out = append(out, sessionUser{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	h.jsonOK(w, out)
}
