package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// ImprintDTO is a struct that represents an imprint response
// Text is the imprint text
type ImprintDTO struct {
	Text string `json:"text"`
}

// MetadataDTO is a struct that represents the version metadata response
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response
type UserDTO struct {
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Features []string `json:"features"`
	Active   bool     `json:"active"`
}

// ActivationTokenDTO is a struct that represents an activation token response.
// Only callers holding the read-activation-token feature ever see this.
type ActivationTokenDTO struct {
	TokenID   string `json:"tokenId"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// ArticleDTO is a struct that represents an article response
type ArticleDTO struct {
	ArticleID string `json:"articleId"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// TeamMemberDTO is a struct that represents a team member response
type TeamMemberDTO struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
	Rank     int    `json:"rank"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination interface{} `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}
