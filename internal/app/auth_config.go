package app

import (
	"strings"
	"time"

	"github.com/pjecz/casiopea/internal/auth"
)

const (
	defaultLoginAttempts = 10
	defaultLoginWindow   = time.Minute
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// LoginLimit returns the per-client attempt budget for the login endpoint.
// A negative MaxAttempts disables throttling.
func (c AuthConfig) LoginLimit() (int, time.Duration) {
	attempts := c.Login.MaxAttempts
	if attempts == 0 {
		attempts = defaultLoginAttempts
	}
	if attempts < 0 {
		attempts = 0
	}
	window := c.Login.Window
	if window <= 0 {
		window = defaultLoginWindow
	}
	return attempts, window
}

// FirebaseVerifierConfig returns the ID token verifier settings and whether
// Firebase sign-in is enabled.
func (c AuthConfig) FirebaseVerifierConfig() (auth.FirebaseConfig, bool) {
	fb := c.Firebase
	if !fb.Enabled || strings.TrimSpace(fb.ProjectID) == "" {
		return auth.FirebaseConfig{}, false
	}
	return auth.FirebaseConfig{
		ProjectID: strings.TrimSpace(fb.ProjectID),
		KeysURL:   strings.TrimSpace(fb.KeysURL),
	}, true
}
