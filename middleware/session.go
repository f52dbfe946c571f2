package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/models"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "nearmart.sid"

// ErrSessionNotFound is returned when the token does not resolve to a
// live session (missing, destroyed or past its idle expiry)
var ErrSessionNotFound = errors.New("session not found")

// SessionStore manages server-side login sessions. The store is scoped
// and explicit: every request that needs a session goes through it, and
// tests swap in their own instance.
type SessionStore interface {
	Create(userID uint, role string) (string, error)
	Get(token string) (*models.Session, error)
	Destroy(token string) error
}

// GormSessionStore persists sessions in the database, mirroring the
// session table the frontend deployment expects to survive restarts.
type GormSessionStore struct {
	TTL time.Duration
}

// NewGormSessionStore creates a database-backed session store with the
// given idle expiry
func NewGormSessionStore(ttl time.Duration) *GormSessionStore {
	return &GormSessionStore{TTL: ttl}
}

// Create opens a new session for the user and returns its token.
// The role is captured here and trusted for the session's lifetime.
func (s *GormSessionStore) Create(userID uint, role string) (string, error) {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(s.TTL),
	}
	if err := config.GetDB().Create(&session).Error; err != nil {
		return "", err
	}
	return session.Token, nil
}

// Get resolves a token to a live session. Expired sessions are removed
// and reported as not found.
func (s *GormSessionStore) Get(token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	if err := config.GetDB().First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.Expired() {
		// Lazy cleanup; a failed delete only delays the next one
		config.GetDB().Delete(&models.Session{}, "token = ?", token)
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Destroy removes the session, logging the user out
func (s *GormSessionStore) Destroy(token string) error {
	return config.GetDB().Delete(&models.Session{}, "token = ?", token).Error
}

var sessionStoreInstance SessionStore

// InitSessionStore initializes the global session store from configuration
func InitSessionStore(cfg *config.Config) SessionStore {
	sessionStoreInstance = NewGormSessionStore(cfg.SessionTTL)
	return sessionStoreInstance
}

// GetSessionStore returns the initialized session store
func GetSessionStore() SessionStore {
	return sessionStoreInstance
}

// SetSessionStore replaces the session store instance (primarily for testing)
func SetSessionStore(store SessionStore) {
	sessionStoreInstance = store
}

// CurrentSession resolves the request's session cookie against the store.
// The boolean is false when the request carries no live session.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil, false
	}

	session, err := GetSessionStore().Get(token)
	if err != nil {
		return nil, false
	}
	return session, true
}

// SetSessionCookie attaches the session cookie to the response. The
// cross-site flags support the split frontend/backend deployment.
func SetSessionCookie(c *gin.Context, token string, cfg *config.Config) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(SessionCookieName, token, int(cfg.SessionTTL.Seconds()), "/", "", cfg.IsProduction(), true)
}

// ClearSessionCookie expires the session cookie on the client
func ClearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.IsProduction(), true)
}
