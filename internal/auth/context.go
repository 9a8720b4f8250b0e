package auth

import "context"

type contextKey string

const userClaimsKey contextKey = "userClaims"

// WithUserClaims attaches authenticated user claims to a context.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// UserClaimsFromContext extracts authenticated user claims from a context.
func UserClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}
