package serverauth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/tahsinm/registrar/data/db"
)

type Sanatized int

const (
	UserKey Sanatized = iota
)

const UserCookieName = "user_token"
const DefaultTokenDuration = 30 * time.Minute

const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// SessionUser is what handlers read off the request context after the
// role middleware has run
type SessionUser struct {
	ID        int64
	Username  string
	Role      string
	StudentID int64
	FacultyID int64
}

type sessionEntry struct {
	user       SessionUser
	expireTime time.Time
}

// auth is in memory as the expected number of concurrently signed in
// users is tiny, a restart just means logging in again
type TokenStore struct {
	tokenToUser   map[string]*sessionEntry
	tokenDuration time.Duration
	mu            sync.RWMutex
}

func NewTokenStore(tokenDuration time.Duration) *TokenStore {
	return &TokenStore{
		tokenToUser:   map[string]*sessionEntry{},
		tokenDuration: tokenDuration,
	}
}

func (t *TokenStore) getToken(token string) (SessionUser, bool) {
	t.refreshTokens()
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.tokenToUser[token]
	if !ok {
		return SessionUser{}, false
	}
	// sliding expiry
	entry.expireTime = time.Now().Add(t.tokenDuration)
	return entry.user, true
}

func (t *TokenStore) addToken(token string, user SessionUser) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokenToUser[token] = &sessionEntry{
		user:       user,
		expireTime: time.Now().Add(t.tokenDuration),
	}
}

func (t *TokenStore) removeToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokenToUser, token)
}

func (t *TokenStore) refreshTokens() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for token, entry := range t.tokenToUser {
		if now.After(entry.expireTime) {
			delete(t.tokenToUser, token)
		}
	}
}

type Handler struct {
	dbPool   *pgxpool.Pool
	tokens   *TokenStore
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(pool *pgxpool.Pool, logger *slog.Logger) *Handler {
	return &Handler{
		dbPool:   pool,
		tokens:   NewTokenStore(DefaultTokenDuration),
		logger:   logger,
		validate: validator.New(),
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid login payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	q := db.New(h.dbPool)
	user, err := q.AuthGetUser(ctx, req.Username)
	if err != nil {
		// same response as a wrong password so usernames cannot be probed
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.EncryptedPassword), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	h.tokens.addToken(token, SessionUser{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		StudentID: user.StudentID.Int64,
		FacultyID: user.FacultyID.Int64,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("user logged in", "username", user.Username, "role", user.Role)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"role": user.Role})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(UserCookieName)
	if err == nil {
		h.tokens.removeToken(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   UserCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// RequireRole gates a subtree to the given roles and puts the session
// user on the context
func (h *Handler) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]struct{}{}
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(UserCookieName)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			user, ok := h.tokens.getToken(cookie.Value)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(UserKey).(SessionUser)
	return user, ok
}
