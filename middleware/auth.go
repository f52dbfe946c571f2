package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/models"
)

// Context keys set by the gates below
const (
	ContextSessionKey = "session"
	ContextUserKey    = "current_user"
)

// The gates in this file are independent preconditions an endpoint
// composes as needed, not a linear pipeline. RequireRole trusts the role
// captured in the session at login; CheckUserBlocked re-fetches the
// account so blocking takes effect on the very next request. That
// freshness asymmetry is deliberate.

// RequireLogin rejects requests that carry no live session
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RequireRetailer rejects requests whose session role is not retailer
func RequireRetailer() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
			return
		}

		if session.Role != models.RoleRetailer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Retailer access only"})
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RequireAdmin rejects requests whose session role is not admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not Verified! First Login"})
			return
		}

		if session.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not Authorized! Only Admin can access."})
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// CheckUserBlocked re-fetches the session's account and rejects requests
// from blocked users. Unlike the role gates this one always reads the
// users table, so an admin block is honored immediately.
func CheckUserBlocked() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
			return
		}

		var user models.User
		if err := config.GetDB().First(&user, session.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			log.Printf("User block check error: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		if user.Block {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are Blocked by Admin!"})
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(ContextUserKey, &user)
		c.Next()
	}
}

// GetSession returns the session placed in the context by one of the gates
func GetSession(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok
}

// GetCurrentUser returns the account loaded by CheckUserBlocked, if any
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
