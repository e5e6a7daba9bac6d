package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// UserKey is the context key under which the guard stores the resolved user.
var UserKey = &contextKey{"user"}

// SessionKey is the context key under which the guard stores the resolved session.
var SessionKey = &contextKey{"session"}

// TraceIdKey is the context key for the per-request trace ID.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey is the context key for the validated request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
