package msauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity established by a successful acquisition. At most
// one session is live at a time; it is owned exclusively by the Manager and
// replaced wholesale on every successful re-acquisition.
type Session struct {
	// AccountID is the opaque, per-user stable account identifier
	// (object ID and tenant ID joined, mirroring the identity platform's
	// home account ID format).
	AccountID string `json:"account_id"`

	// Username is the signing user's principal name (email-like).
	Username string `json:"username"`

	// TenantID is the directory tenant the user authenticated against.
	TenantID string `json:"tenant_id"`
}

// sessionFromIDToken extracts the session identity from an OIDC ID token.
// The token is decoded without signature verification: it was received
// directly from the token endpoint over TLS, and this process is its only
// audience.
func sessionFromIDToken(raw string) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("malformed id_token: %w", err)
	}

	oid, _ := claims["oid"].(string)
	tid, _ := claims["tid"].(string)
	username, _ := claims["preferred_username"].(string)

	if tid == "" || username == "" {
		return nil, fmt.Errorf("id_token missing identity claims (tid=%q, preferred_username present=%t)",
			tid, username != "")
	}

	return &Session{
		AccountID: oid + "." + tid,
		Username:  username,
		TenantID:  tid,
	}, nil
}
