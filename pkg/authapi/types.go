package authapi

import "time"

// User is the account snapshot returned by the backend.
// It is immutable on the client side; a fresh copy arrives with every
// session fetch.
type User struct {
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Image            string    `json:"image,omitempty"`
	EmailVerified    bool      `json:"emailVerified"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
}

// Session is the server-side session descriptor.
type Session struct {
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
}

// SessionRecord pairs a session with its user. The zero value means
// "anonymous": no user, no session.
type SessionRecord struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// Authenticated reports whether the record carries a user.
func (r SessionRecord) Authenticated() bool {
	return r.User.ID != ""
}

// StatusResponse is the acknowledgment shape for fire-and-forget operations
// such as password reset requests.
type StatusResponse struct {
	Status bool `json:"status"`
}

// SocialRedirect is returned by social sign-in: the provider authorization
// URL the caller must navigate to.
type SocialRedirect struct {
	URL      string `json:"url"`
	Redirect bool   `json:"redirect"`
}
