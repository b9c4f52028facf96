package service

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestIdentityService() *IdentityService {
	return NewIdentityService("test-secret", "notebook.example.com", time.Hour)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	s := newTestIdentityService()
	identity := s.IdentityFor("a@example.com")

	token, err := s.IssueToken(identity)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	got, err := s.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.ID != identity.ID || got.Email != "a@example.com" {
		t.Fatalf("expected %+v got %+v", identity, got)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	s := newTestIdentityService()

	token, err := s.IssueToken(s.IdentityFor("a@example.com"))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := s.Verify(context.Background(), tampered); err == nil {
		t.Fatalf("expected verification to fail for a tampered token")
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	other := NewIdentityService("test-secret", "other.example.com", time.Hour)
	token, err := other.IssueToken(other.IdentityFor("a@example.com"))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	s := newTestIdentityService()
	if _, err := s.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected verification to fail for a foreign issuer")
	}
}

func TestIdentityForIsStable(t *testing.T) {
	s := newTestIdentityService()

	a := s.IdentityFor("a@example.com")
	b := s.IdentityFor("a@example.com")
	if a.ID != b.ID {
		t.Fatalf("same email must map to the same id: %s != %s", a.ID, b.ID)
	}

	c := s.IdentityFor("c@example.com")
	if a.ID == c.ID {
		t.Fatalf("different emails must map to different ids")
	}
}

func TestLoginLogoutURLs(t *testing.T) {
	s := newTestIdentityService()

	login := s.LoginURL("/?notebook_name=Stage 5")
	if !strings.HasPrefix(login, "/auth/login?") {
		t.Fatalf("unexpected login url %q", login)
	}
	if !strings.Contains(login, "continue=%2F%3Fnotebook_name%3DStage+5") {
		t.Fatalf("continue must be query encoded, got %q", login)
	}

	logout := s.LogoutURL("/")
	if !strings.HasPrefix(logout, "/auth/logout?") {
		t.Fatalf("unexpected logout url %q", logout)
	}
}
