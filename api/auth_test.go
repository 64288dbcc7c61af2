package api

import (
	"strings"
	"testing"

	"taskboard-api/domain"
)

func newTestAuth() *Auth {
	return NewAuth([]byte("test-secret"), nil)
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth()
	user := &domain.User{ID: 7, Username: "alice", Role: domain.RoleAdmin}

	token, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := auth.PrincipalFromAuthHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.UserID != 7 || p.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestPrincipalFromAuthHeaderRejectsBadInput(t *testing.T) {
	auth := newTestAuth()

	cases := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"no scheme", "token"},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"many periods", "Bearer " + strings.Repeat(".", 10000)},
	}
	for _, tc := range cases {
		if _, err := auth.PrincipalFromAuthHeader(tc.header); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	other := NewAuth([]byte("other-secret"), nil)
	token, err := other.IssueToken(&domain.User{ID: 1, Username: "x", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := newTestAuth().PrincipalFromAuthHeader("Bearer " + token); err == nil {
		t.Fatal("foreign signature must be rejected")
	}
}

func TestNewAuthRequiresSecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty secret")
		}
	}()
	NewAuth(nil, nil)
}
