// Package schemas defines the request structures for various operations in the application.
package schemas

// CreateUserRequest is a struct that represents a user creation request.
// Users are created by administrators; the account stays inactive until the
// activation token is consumed and a first password is set.
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email,max=128"`
	Features []string `json:"features" validate:"dive,feature_validation"`
}

// ActivationRequest is a struct that represents an activation request.
// Token is the one-time activation token, Password becomes the first password.
type ActivationRequest struct {
	Token    string `json:"token" validate:"required,len=64,hexadecimal"`
	Password string `json:"password" validate:"required,min=8,max=72,password_validation"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest is a struct that represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8,max=72"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,password_validation"`
}

// UpdateFeaturesRequest is a struct that represents a feature grant request.
// Every entry must come from the capability catalog so typos cannot silently
// fail open or closed.
type UpdateFeaturesRequest struct {
	Features []string `json:"features" validate:"required,dive,feature_validation"`
}

// ArticleRequest is a struct that represents an article create/update request
type ArticleRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"required,max=200,slug_validation"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

// TeamMemberRequest is a struct that represents a team member create/update request
type TeamMemberRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Title string `json:"title" validate:"required,max=100"`
	Bio   string `json:"bio" validate:"max=2000"`
	Email string `json:"email" validate:"omitempty,email,max=128"`
	Rank  int    `json:"rank" validate:"gte=0"`
}

// ContactRequest is a struct that represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=128"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
