package schemas

import "net/http"

// CustomError is the stable error shape returned to clients. Name and
// StatusCode are machine-readable, Message and Action are meant for humans.
type CustomError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Action     string `json:"action"`
	StatusCode int    `json:"status_code"`
}

var (
	// NotFoundError covers absent resources. Expired tokens intentionally map
	// here as well, so callers cannot distinguish "wrong" from "expired".
	NotFoundError = &CustomError{
		Name:       "NotFoundError",
		Message:    "The requested resource could not be found.",
		Action:     "Check the identifier and try again.",
		StatusCode: http.StatusNotFound,
	}

	// UnauthorizedError covers missing, invalid and expired credentials alike.
	UnauthorizedError = &CustomError{
		Name:       "UnauthorizedError",
		Message:    "You must be logged in to perform this action.",
		Action:     "Log in and try again.",
		StatusCode: http.StatusUnauthorized,
	}

	// ForbiddenError means the caller is authenticated but lacks the required feature.
	ForbiddenError = &CustomError{
		Name:       "ForbiddenError",
		Message:    "You do not have permission to perform this action.",
		Action:     "Contact an administrator if you believe this is a mistake.",
		StatusCode: http.StatusForbidden,
	}

	// ValidationError covers malformed input and reused or expired one-time tokens.
	ValidationError = &CustomError{
		Name:       "ValidationError",
		Message:    "The request body is invalid.",
		Action:     "Check the request body and try again.",
		StatusCode: http.StatusBadRequest,
	}

	// InvalidCredentialsError is returned on failed logins without revealing
	// whether the email or the password was wrong.
	InvalidCredentialsError = &CustomError{
		Name:       "NotFoundError",
		Message:    "The email and password combination is invalid.",
		Action:     "Check your credentials and try again.",
		StatusCode: http.StatusNotFound,
	}

	// UserNotActivatedError is returned when logging in before the activation
	// token has been consumed.
	UserNotActivatedError = &CustomError{
		Name:       "ForbiddenError",
		Message:    "The account has not been activated yet.",
		Action:     "Use your activation code to set a password first.",
		StatusCode: http.StatusForbidden,
	}

	// MethodNotAllowedError is accompanied by an Allow header listing permitted verbs.
	MethodNotAllowedError = &CustomError{
		Name:       "MethodNotAllowedError",
		Message:    "The HTTP method is not allowed for this route.",
		Action:     "Check the Allow header for permitted methods.",
		StatusCode: http.StatusMethodNotAllowed,
	}

	// EmailUnreachableError is returned when the address fails the MX
	// reachability check at registration.
	EmailUnreachableError = &CustomError{
		Name:       "ValidationError",
		Message:    "The email address appears to be unreachable.",
		Action:     "Check the email address for typos.",
		StatusCode: http.StatusBadRequest,
	}

	// PasswordMismatchError is returned when an authenticated user's current
	// password does not match during a password change.
	PasswordMismatchError = &CustomError{
		Name:       "PasswordMismatchError",
		Message:    "The current password is incorrect.",
		Action:     "Check your current password and try again.",
		StatusCode: http.StatusForbidden,
	}

	// EmailTakenError is returned when registering an already known email address.
	EmailTakenError = &CustomError{
		Name:       "ValidationError",
		Message:    "The email address is already in use.",
		Action:     "Use another email address.",
		StatusCode: http.StatusConflict,
	}

	// ConfigurationError signals a missing required server secret. The internal
	// detail stays server-side.
	ConfigurationError = &CustomError{
		Name:       "ConfigurationError",
		Message:    "The server is misconfigured.",
		Action:     "Try again later or contact support.",
		StatusCode: http.StatusInternalServerError,
	}

	// ServiceError signals a downstream dependency failure.
	ServiceError = &CustomError{
		Name:       "ServiceError",
		Message:    "A downstream service failed to respond.",
		Action:     "Try again later.",
		StatusCode: http.StatusInternalServerError,
	}

	// DatabaseError signals a persistence failure.
	DatabaseError = &CustomError{
		Name:       "ServiceError",
		Message:    "The database could not complete the operation.",
		Action:     "Try again later.",
		StatusCode: http.StatusInternalServerError,
	}

	// InternalServerError is the sanitized fallback for unknown causes.
	InternalServerError = &CustomError{
		Name:       "InternalServerError",
		Message:    "An unexpected error occurred.",
		Action:     "Try again later or contact support.",
		StatusCode: http.StatusInternalServerError,
	}
)
