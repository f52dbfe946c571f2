package models

import "time"

// Session is one server-managed login session, keyed by the random token
// carried in the nearmart.sid cookie.
//
// Role is captured at login time and trusted from the session for the
// rest of its lifetime; a role change in the users table is not honored
// until re-login. Block status is deliberately NOT stored here — it is
// re-fetched from the users table on every gated request so blocking
// takes effect immediately.
type Session struct {
	Token     string    `gorm:"primaryKey" json:"token"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"not null" json:"role"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session has passed its idle expiry
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
