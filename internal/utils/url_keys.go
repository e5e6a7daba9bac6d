package utils

const (
	// UserIdKey is the key for user ID used in routing parameters.
	UserIdKey = "userId"

	// ArticleIdKey is the key for article ID used in routing parameters.
	ArticleIdKey = "articleId"

	// MemberIdKey is the key for team member ID used in routing parameters.
	MemberIdKey = "memberId"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
