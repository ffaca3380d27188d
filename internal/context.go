package internal

import "context"

type ctxKey string

const ContextUserIDKey ctxKey = "userID"

// ContextWithUserID stamps the authenticated account's ID onto the request
// context. Handlers that only need the caller's identity read this instead
// of the full user.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries none.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserIDKey).(int64); ok {
		return userID
	}
	return 0
}
