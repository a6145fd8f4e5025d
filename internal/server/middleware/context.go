package middleware

import (
	"context"
)

type contextKey string

const ContextKeySession contextKey = "session"

// Session identifies the board account and user behind a verified request.
type Session struct {
	AccountID string
	UserID    string
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	v, ok := ctx.Value(ContextKeySession).(Session)
	return v, ok
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}
