package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

// googleUserInfoURL is Google's OpenID Connect userinfo endpoint, used when
// the token response carries no ID token.
const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleConfig configures the Google OAuth client.
type GoogleConfig struct {
	// ClientID and ClientSecret identify the OAuth application.
	// The secret can also be set via INKPAD_GOOGLE_CLIENT_SECRET.
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`

	// RedirectURL is the registered callback, e.g.
	// http://localhost:8080/auth/google/callback.
	RedirectURL string `mapstructure:"redirect_url" yaml:"redirect_url"`
}

// Profile is the verified identity returned by the provider exchange.
type Profile struct {
	Subject string `mapstructure:"sub"`
	Email   string `mapstructure:"email"`
	Name    string `mapstructure:"name"`
}

// Google exchanges authorization codes for Google profiles and resolves
// them to local accounts, provisioning on first sight.
type Google struct {
	oauth       *oauth2.Config
	users       store.UserStore
	userInfoURL string
}

// NewGoogle creates the federated authenticator. The returned authenticator
// is disabled (Enabled() == false) when no client ID is configured.
func NewGoogle(cfg GoogleConfig, users store.UserStore) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		users:       users,
		userInfoURL: googleUserInfoURL,
	}
}

// Enabled reports whether Google sign-in is configured.
func (g *Google) Enabled() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// LoginURL returns the provider authorization URL carrying the CSRF state.
func (g *Google) LoginURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for a verified profile.
//
// The profile is read from the ID token when present. The token arrives
// directly from Google's token endpoint over TLS, so its claims are decoded
// without signature verification; the userinfo endpoint is the fallback.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		if profile, err := profileFromIDToken(idToken); err == nil {
			return profile, nil
		}
	}

	return g.fetchUserInfo(ctx, token)
}

// Authenticate completes the federated flow: code exchange followed by
// account resolution.
func (g *Google) Authenticate(ctx context.Context, code string) (*models.User, error) {
	profile, err := g.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return g.ResolveAccount(ctx, profile)
}

// ResolveAccount maps a provider profile to a local account, provisioning an
// account without a local password on first login. Re-running the flow for
// the same profile never creates a second account: a concurrent provisioning
// race is settled by the unique index on email, and the loser adopts the
// winning row.
func (g *Google) ResolveAccount(ctx context.Context, profile *Profile) (*models.User, error) {
	email := models.NormalizeEmail(profile.Email)
	if !ValidEmail(email) {
		return nil, fmt.Errorf("provider profile has no usable email: %w", models.ErrInvalidEmail)
	}

	user, err := g.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &models.User{
		Email:    email,
		Provider: string(models.ProviderGoogle),
		// No local password: local login stays disabled for this account.
	}
	err = g.users.CreateUser(ctx, user)
	if errors.Is(err, models.ErrDuplicateUser) {
		return g.users.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	return user, nil
}

// profileFromIDToken decodes the profile claims carried in the ID token.
func profileFromIDToken(idToken string) (*Profile, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}

	var profile Profile
	if err := mapstructure.Decode(map[string]any(claims), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode id token claims: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("id token carries no email claim")
	}
	return &profile, nil
}

// fetchUserInfo retrieves the profile from the userinfo endpoint using the
// token-authenticated client.
func (g *Google) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := g.oauth.Client(ctx, token)
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	var profile Profile
	if err := mapstructure.Decode(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo profile: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo response carries no email")
	}
	return &profile, nil
}
