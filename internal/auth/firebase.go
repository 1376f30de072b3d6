package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"

	// DefaultFirebaseKeysURL publishes the keys that sign Firebase ID tokens.
	DefaultFirebaseKeysURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// ErrEmailNotVerified rejects ID tokens without a verified e-mail address.
var ErrEmailNotVerified = errors.New("firebase: email not verified")

// FirebaseConfig configures verification of Firebase (Google) sign-in ID tokens.
type FirebaseConfig struct {
	ProjectID  string
	KeysURL    string
	HTTPClient *http.Client
	Clock      func() time.Time
	// KeySet replaces the remote key set, mainly for tests.
	KeySet oidc.KeySet
}

// ExternalIdentity is the verified subject of an ID token.
type ExternalIdentity struct {
	Subject string
	Email   string
}

// FirebaseVerifier checks Firebase ID tokens: issuer, audience, expiry and
// signature against the published keys.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewFirebaseVerifier builds a verifier for one Firebase project. Keys are
// fetched lazily on the first verification.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("firebase: project id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	keySet := cfg.KeySet
	if keySet == nil {
		keysURL := strings.TrimSpace(cfg.KeysURL)
		if keysURL == "" {
			keysURL = DefaultFirebaseKeysURL
		}
		keySet = oidc.NewRemoteKeySet(ctx, keysURL)
	}

	verifier := oidc.NewVerifier(firebaseIssuerPrefix+projectID, keySet, &oidc.Config{
		ClientID: projectID,
		Now:      cfg.Clock,
	})
	return &FirebaseVerifier{verifier: verifier}, nil
}

// Verify validates rawIDToken and returns the e-mail it was issued for.
func (v *FirebaseVerifier) Verify(ctx context.Context, rawIDToken string) (*ExternalIdentity, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := v.verifier.Verify(ctx, strings.TrimSpace(rawIDToken))
	if err != nil {
		return nil, fmt.Errorf("firebase: verify id token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("firebase: decode claims: %w", err)
	}
	if strings.TrimSpace(claims.Email) == "" || !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &ExternalIdentity{Subject: token.Subject, Email: claims.Email}, nil
}
