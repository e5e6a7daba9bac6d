// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system.
type User struct {
	ID          *uuid.UUID `json:"id"`           // Unique identifier for the user.
	Name        string     `json:"name"`         // Display name of the user.
	Email       string     `json:"email"`        // Email address of the user, unique.
	Password    string     `json:"-"`            // Password hash of the user.
	Features    []string   `json:"features"`     // Capability strings granted to the user.
	CreatedAt   *time.Time `json:"created_at"`   // Timestamp when the user was created.
	UpdatedAt   *time.Time `json:"updated_at"`   // Timestamp when the user was last updated.
	ActivatedAt *time.Time `json:"activated_at"` // Timestamp when the user account was activated, nil until then.
}

// Session represents a server-issued bearer credential proving prior authentication.
// A session stays valid until its expiry timestamp passes; every authorized request
// pushes the expiry forward (sliding expiration).
type Session struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the session.
	UserID    *uuid.UUID `json:"user_id"`    // Identifier of the owning user.
	Token     string     `json:"token"`      // Opaque bearer token, unique.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the session was created.
	UpdatedAt *time.Time `json:"updated_at"` // Timestamp of the last renewal.
	ExpiresAt *time.Time `json:"expires_at"` // Timestamp when the session expires.
}

// ActivationToken represents a one-time token allowing a newly created account
// to set its first password. It can be consumed at most once.
type ActivationToken struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the activation token.
	UserID    *uuid.UUID `json:"user_id"`    // Identifier of the user associated with this token.
	Token     string     `json:"token"`      // Token string.
	Used      bool       `json:"used"`       // Whether the token has already been consumed.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the token was issued.
	ExpiresAt *time.Time `json:"expires_at"` // Timestamp when the token expires.
}

// Article represents a blog article on the firm's website.
type Article struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the article.
	AuthorID  *uuid.UUID `json:"author_id"`  // Identifier of the authoring user.
	Title     string     `json:"title"`      // Title of the article.
	Slug      string     `json:"slug"`       // URL slug, unique.
	Body      string     `json:"body"`       // Sanitized article body.
	Published bool       `json:"published"`  // Whether the article is publicly visible.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the article was created.
	UpdatedAt *time.Time `json:"updated_at"` // Timestamp when the article was last updated.
}

// TeamMember represents a lawyer or staff member shown on the team page.
type TeamMember struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the team member.
	Name      string     `json:"name"`       // Full name.
	Title     string     `json:"title"`      // Job title, e.g. "Rechtsanwältin".
	Bio       string     `json:"bio"`        // Short biography.
	Email     string     `json:"email"`      // Public contact address.
	Rank      int        `json:"rank"`       // Sort order on the team page.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the entry was created.
	UpdatedAt *time.Time `json:"updated_at"` // Timestamp when the entry was last updated.
}
