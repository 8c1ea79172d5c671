package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("fridge-0to5")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := model.User{ID: "u1", PasswordHash: hash}
	if err := CheckPassword(user, "fridge-0to5"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(user, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestRequireRole(t *testing.T) {
	manager := Session{UserID: "m", Role: model.RoleManager}
	staff := Session{UserID: "s", Role: model.RoleStaff}

	if err := RequireRole(manager, model.RoleManager); err != nil {
		t.Fatalf("manager should pass manager check: %v", err)
	}
	if err := RequireRole(manager, model.RoleStaff); err != nil {
		t.Fatalf("manager should pass staff check: %v", err)
	}
	if err := RequireRole(staff, model.RoleManager); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := RequireRole(Session{}, model.RoleStaff); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestTokensIssueAndVerify(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	session := Session{UserID: "user-1", FullName: "Sam Cook", Role: model.RoleStaff}

	raw, err := tokens.Issue(session)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != session {
		t.Fatalf("expected %+v, got %+v", session, got)
	}

	other, _ := NewTokens("other-secret", time.Hour)
	if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token signed with another secret to fail, got %v", err)
	}
}

func TestTokensExpire(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, err := tokens.Issue(Session{UserID: "user-1", Role: model.RoleStaff})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("  ", time.Hour); err == nil {
		t.Fatalf("expected empty secret to be rejected")
	}
}
