package msauth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// testIDToken builds a signed ID token carrying the identity claims the
// session is derived from. The signature is irrelevant: sessions are
// extracted without verification.
func testIDToken(t *testing.T, oid, tid, username string) string {
	t.Helper()
	claims := jwt.MapClaims{}
	if oid != "" {
		claims["oid"] = oid
	}
	if tid != "" {
		claims["tid"] = tid
	}
	if username != "" {
		claims["preferred_username"] = username
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return raw
}

func TestSessionFromIDToken(t *testing.T) {
	raw := testIDToken(t, "oid-1", "tenant-1", "ada@contoso.com")

	session, err := sessionFromIDToken(raw)
	if err != nil {
		t.Fatalf("Failed to extract session: %v", err)
	}

	if session.AccountID != "oid-1.tenant-1" {
		t.Errorf("AccountID = %q, want oid-1.tenant-1", session.AccountID)
	}
	if session.Username != "ada@contoso.com" {
		t.Errorf("Username = %q, want ada@contoso.com", session.Username)
	}
	if session.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want tenant-1", session.TenantID)
	}
}

func TestSessionFromIDToken_MissingClaims(t *testing.T) {
	tests := []struct {
		name string
		raw  func(t *testing.T) string
	}{
		{"no tenant", func(t *testing.T) string { return testIDToken(t, "oid-1", "", "ada@contoso.com") }},
		{"no username", func(t *testing.T) string { return testIDToken(t, "oid-1", "tenant-1", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sessionFromIDToken(tt.raw(t)); err == nil {
				t.Error("Expected an error for incomplete identity claims")
			}
		})
	}
}

func TestSessionFromIDToken_Malformed(t *testing.T) {
	if _, err := sessionFromIDToken("not-a-jwt"); err == nil {
		t.Error("Expected an error for a malformed token")
	}
}
