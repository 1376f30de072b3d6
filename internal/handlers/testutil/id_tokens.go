package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/casiopea/internal/app"
)

const idTokenKeyID = "llave-pruebas"

// IDTokenIssuer signs Firebase-style ID tokens and serves its public key
// as a JWKS document.
type IDTokenIssuer struct {
	ProjectID string
	KeysURL   string
	key       *rsa.PrivateKey
}

// NewIDTokenIssuer starts a key server that is closed with the test.
func NewIDTokenIssuer(t *testing.T) *IDTokenIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"kid": idTokenKeyID,
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(server.Close)

	return &IDTokenIssuer{ProjectID: "casiopea-pruebas", KeysURL: server.URL, key: key}
}

// Configure enables Firebase sign-in against this issuer.
func (i *IDTokenIssuer) Configure(cfg *app.Config) {
	cfg.Auth.Firebase = app.FirebaseSettings{Enabled: true, ProjectID: i.ProjectID, KeysURL: i.KeysURL}
}

// Sign issues an ID token for email, valid for one hour.
func (i *IDTokenIssuer) Sign(t *testing.T, email string, verified bool) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            "https://securetoken.google.com/" + i.ProjectID,
		"aud":            i.ProjectID,
		"sub":            "uid-" + email,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          email,
		"email_verified": verified,
	})
	token.Header["kid"] = idTokenKeyID
	raw, err := token.SignedString(i.key)
	require.NoError(t, err)
	return raw
}
