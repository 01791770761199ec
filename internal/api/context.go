package api

import "context"

type ctxKey int

const adminKey ctxKey = iota

// Admin identifies the authenticated staff user on admin routes.
type Admin struct {
	Email string
}

func WithAdmin(ctx context.Context, a *Admin) context.Context {
	return context.WithValue(ctx, adminKey, a)
}

func AdminFromContext(ctx context.Context) *Admin {
	a, _ := ctx.Value(adminKey).(*Admin)
	return a
}
