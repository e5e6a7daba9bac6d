// Package capabilities defines the fixed catalog of permission strings
// (features) and the evaluator used by the request guard. The same catalog
// backs administrative grants and per-request enforcement, so a feature
// string that is not listed here can never take effect anywhere.
package capabilities

import "kanzlei-server/internal/schemas"

const (
	ReadUserSelf        = "read-user-self"
	ReadUserList        = "read-user-list"
	CreateUser          = "create-user"
	UpdateUserFeatures  = "update-user-features"
	ReadActivationToken = "read-activation-token"
	ReadArticle         = "read-article"
	CreateArticle       = "create-article"
	UpdateArticle       = "update-article"
	DeleteArticle       = "delete-article"
	CreateTeamMember    = "create-team-member"
	UpdateTeamMember    = "update-team-member"
	DeleteTeamMember    = "delete-team-member"
	ReadSession         = "read-session"
)

// catalog is the complete set of legal feature strings.
var catalog = map[string]struct{}{
	ReadUserSelf:        {},
	ReadUserList:        {},
	CreateUser:          {},
	UpdateUserFeatures:  {},
	ReadActivationToken: {},
	ReadArticle:         {},
	CreateArticle:       {},
	UpdateArticle:       {},
	DeleteArticle:       {},
	CreateTeamMember:    {},
	UpdateTeamMember:    {},
	DeleteTeamMember:    {},
	ReadSession:         {},
}

// Can reports whether the user's feature set contains the given capability.
// Unknown capability strings evaluate to false rather than erroring, so the
// check fails closed.
func Can(user *schemas.User, capability string) bool {
	if user == nil {
		return false
	}

	if _, ok := catalog[capability]; !ok {
		return false
	}

	for _, feature := range user.Features {
		if feature == capability {
			return true
		}
	}

	return false
}

// Known reports whether the capability string is part of the catalog.
// Feature grants are validated with this at write time.
func Known(capability string) bool {
	_, ok := catalog[capability]
	return ok
}
