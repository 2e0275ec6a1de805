package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "clinicadmin.admin_claims"

// WithClaims stores verified session claims in context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the session claims if present.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// ActorID returns the public id of the authenticated admin, or "" when unauthenticated.
func ActorID(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.AdminID
	}
	return ""
}
