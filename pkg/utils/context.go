package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	tokenKey    contextKey = "token"
)

// identity is what the auth middleware learned about the caller.
type identity struct {
	userID uuid.UUID
	role   string
}

func SetUserContext(ctx context.Context, userID uuid.UUID, role string) context.Context {
	return context.WithValue(ctx, identityKey, identity{userID: userID, role: role})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(identityKey).(identity)
	if !ok || id.userID == uuid.Nil {
		return uuid.Nil, false
	}
	return id.userID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(identity)
	if !ok {
		return "", false
	}
	return id.role, true
}

// GetTokenFromContext returns the session token set by the auth middleware
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}
