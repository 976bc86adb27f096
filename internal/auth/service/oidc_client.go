package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/resilience"
)

// idTokenClaims are the ID token claims read during a federated sign-in.
type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	SessionID     string `json:"sid"`
	jwt.RegisteredClaims
}

type oidcClient struct {
	httpClient *http.Client
	policy     *resilience.Policy

	mu   sync.RWMutex
	jwks map[string]*jose.JSONWebKeySet
}

// NewOIDCClient creates a FederationClient. Token and JWKS requests run under policy.
func NewOIDCClient(httpClient *http.Client, policy *resilience.Policy) FederationClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &oidcClient{
		httpClient: httpClient,
		policy:     policy,
		jwks:       make(map[string]*jose.JSONWebKeySet),
	}
}

func oauth2Config(provider *authDomain.OIDCProvider, redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = provider.RedirectURI
	}
	return &oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   provider.AuthorizationEndpoint,
			TokenURL:  provider.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURI,
		Scopes:      strings.Fields(provider.Scope),
	}
}

func (c *oidcClient) AuthCodeURL(provider *authDomain.OIDCProvider, state string) string {
	return oauth2Config(provider, "").AuthCodeURL(state)
}

// Exchange redeems code at the provider's token endpoint and verifies the ID token against
// the provider's JWKS, issuer and client id. A refused grant or an invalid ID token yields
// ErrAuthenticationFailed.
func (c *oidcClient) Exchange(
	ctx context.Context,
	provider *authDomain.OIDCProvider,
	code, redirectURI string,
) (*authDomain.IdentityClaims, error) {
	if code == "" {
		return nil, authDomain.ErrAuthenticationFailed
	}
	conf := oauth2Config(provider, redirectURI)

	token, err := resilience.Execute(ctx, c.policy, func(ctx context.Context) (*oauth2.Token, error) {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
		token, err := conf.Exchange(ctx, code)
		if err != nil {
			return nil, classifyOAuth2Error(err)
		}
		return token, nil
	})
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, authDomain.ErrAuthenticationFailed
	}
	return c.verify(ctx, provider, rawIDToken)
}

func (c *oidcClient) verify(
	ctx context.Context,
	provider *authDomain.OIDCProvider,
	rawIDToken string,
) (*authDomain.IdentityClaims, error) {
	var keyErr error
	keyfunc := func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		key, err := c.key(ctx, provider.JWKSURI, kid)
		if err != nil {
			keyErr = err
		}
		return key, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384"}),
		jwt.WithAudience(provider.ClientID),
		jwt.WithExpirationRequired(),
	}
	if provider.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(provider.Issuer))
	}

	var claims idTokenClaims
	if _, err := jwt.ParseWithClaims(rawIDToken, &claims, keyfunc, opts...); err != nil {
		if errors.Is(keyErr, resilience.ErrUnavailable) {
			return nil, keyErr
		}
		return nil, authDomain.ErrAuthenticationFailed
	}
	if claims.Subject == "" {
		return nil, authDomain.ErrAuthenticationFailed
	}

	return &authDomain.IdentityClaims{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		SessionID:     claims.SessionID,
	}, nil
}

// key returns the verification key for kid, refreshing the cached key set once when kid is unknown.
func (c *oidcClient) key(ctx context.Context, jwksURI, kid string) (any, error) {
	c.mu.RLock()
	set := c.jwks[jwksURI]
	c.mu.RUnlock()

	if set != nil {
		if key, ok := lookupKey(set, kid); ok {
			return key, nil
		}
	}

	set, err := resilience.Execute(ctx, c.policy, func(ctx context.Context) (*jose.JSONWebKeySet, error) {
		return c.fetchJWKS(ctx, jwksURI)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.jwks[jwksURI] = set
	c.mu.Unlock()

	if key, ok := lookupKey(set, kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("no key %q in provider key set", kid)
}

func lookupKey(set *jose.JSONWebKeySet, kid string) (any, bool) {
	keys := set.Keys
	if kid != "" {
		keys = set.Key(kid)
	}
	for _, k := range keys {
		if k.Use == "" || k.Use == "sig" {
			return k.Key, true
		}
	}
	return nil, false
}

func (c *oidcClient) fetchJWKS(ctx context.Context, jwksURI string) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.Transient(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, resilience.Transient(fmt.Errorf("jwks endpoint returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.Rejection(fmt.Errorf("jwks endpoint returned %d", resp.StatusCode))
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode jwks: %w", err)
	}
	return &set, nil
}

// classifyOAuth2Error separates refused grants from provider and transport failures.
func classifyOAuth2Error(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
			return resilience.Transient(err)
		}
		return resilience.Rejection(fmt.Errorf("%w: %w", authDomain.ErrAuthenticationFailed, err))
	}
	return resilience.Transient(err)
}
