// Package http exposes the sign-in, sign-up, credential and verification endpoints together
// with the middleware that authenticates and authorizes API requests.
package http

import (
	"context"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

type sessionKey struct{}

type tokenKey struct{}

// WithSession stores the validated session and the token it was found under.
func WithSession(ctx context.Context, token string, session *sessionDomain.Session) context.Context {
	ctx = context.WithValue(ctx, tokenKey{}, token)
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSession returns the session stored by AuthenticationMiddleware.
func GetSession(ctx context.Context) (*sessionDomain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*sessionDomain.Session)
	return session, ok && session != nil
}

// GetPrincipal returns the authenticated principal.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	session, ok := GetSession(ctx)
	if !ok {
		return nil, false
	}
	return &session.Principal, true
}

// GetToken returns the session token the request authenticated with.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
