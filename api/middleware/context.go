package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgauth "github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxUsername contextKey = "username"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the authenticated identity into the context.
func WithActor(ctx context.Context, userID, role, username string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	if username != "" {
		ctx = context.WithValue(ctx, ctxUsername, username)
	}
	return ctx
}

// ActorFromContext rebuilds the typed actor the services expect. The bool
// is false when the context carries no usable identity.
func ActorFromContext(ctx context.Context) (pkgauth.Actor, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return pkgauth.Actor{}, false
	}
	role := enums.Role(RoleFromContext(ctx))
	if !role.IsValid() {
		return pkgauth.Actor{}, false
	}
	return pkgauth.Actor{UserID: id, Role: role}, true
}
