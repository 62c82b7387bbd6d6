package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/parkwise/auth-service/internal/domain"
)

func seedVerifiedUser(d *svcDeps) domain.User {
	u := domain.User{
		ID: "u1", Name: "Ada", Email: "ada@example.com",
		PasswordHash: "hash:OldSecret1", IsVerified: true, IsActive: true,
	}
	d.users.seed(u)
	return u
}

func TestPasswordResetRequest_UnknownEmailAcks(t *testing.T) {
	svc, deps := newTestService(t, nil, Config{})

	if err := svc.PasswordResetRequest(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("must ack silently: %v", err)
	}
	if len(deps.pub.resets) != 0 {
		t.Fatal("no event expected for unknown email")
	}
}

func TestPasswordResetRequest_IssuesTokenAndPublishes(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	if err := svc.PasswordResetRequest(context.Background(), "Ada@Example.com"); err != nil {
		t.Fatalf("reset request: %v", err)
	}

	tok := deps.tokens.lastToken("u1", PurposePasswordReset)
	if tok == "" {
		t.Fatal("reset token missing")
	}
	if len(deps.pub.resets) != 1 {
		t.Fatalf("expected 1 reset event, got %d", len(deps.pub.resets))
	}
	if !strings.HasSuffix(deps.pub.resets[0].ResetURL, tok) {
		t.Fatal("reset url does not carry the token")
	}
}

func TestPasswordResetRequest_SupersedesPriorToken(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := deps.tokens.lastToken("u1", PurposePasswordReset)

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}

	err := svc.PasswordResetConfirm(context.Background(), first, "NewSecret1")
	requireErrCode(t, err, "one_time_token_invalid")
}

func TestPasswordResetValidate(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	if err := svc.PasswordResetValidate(context.Background(), "bogus"); err == nil {
		t.Fatal("bogus token must not validate")
	}

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	tok := deps.tokens.lastToken("u1", PurposePasswordReset)

	// Peek must not consume.
	if err := svc.PasswordResetValidate(context.Background(), tok); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := svc.PasswordResetValidate(context.Background(), tok); err != nil {
		t.Fatalf("validate twice: %v", err)
	}
	if err := svc.PasswordResetConfirm(context.Background(), tok, "NewSecret1"); err != nil {
		t.Fatalf("confirm after validate: %v", err)
	}
}

func TestPasswordResetConfirm_Success(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	tok := deps.tokens.lastToken("u1", PurposePasswordReset)

	if err := svc.PasswordResetConfirm(context.Background(), tok, "NewSecret1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Old password no longer works, new one does.
	_, err := svc.Login(context.Background(), "ada@example.com", "OldSecret1")
	requireErrCode(t, err, "invalid_credentials")
	if _, err := svc.Login(context.Background(), "ada@example.com", "NewSecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if len(deps.pub.changes) != 1 {
		t.Fatalf("expected password-changed event, got %d", len(deps.pub.changes))
	}

	// Consumed token fails on re-use.
	err = svc.PasswordResetConfirm(context.Background(), tok, "An0therSecret")
	requireErrCode(t, err, "one_time_token_invalid")
}

func TestPasswordResetConfirm_ExpiredToken(t *testing.T) {
	now := time.Now()
	clock := now

	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{
		PasswordResetTokenTTL: time.Hour,
		Now:                   func() time.Time { return clock },
	})

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	tok := deps.tokens.lastToken("u1", PurposePasswordReset)

	clock = now.Add(time.Hour + time.Second)

	err := svc.PasswordResetConfirm(context.Background(), tok, "NewSecret1")
	requireErrCode(t, err, "one_time_token_invalid")

	// Password unchanged.
	if _, err := svc.Login(context.Background(), "ada@example.com", "OldSecret1"); err != nil {
		t.Fatalf("old password must still work: %v", err)
	}
}

func TestPasswordChange_Success(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	if err := svc.PasswordChange(context.Background(), "u1", "OldSecret1", "NewSecret1"); err != nil {
		t.Fatalf("change: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ada@example.com", "NewSecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if len(deps.pub.changes) != 1 {
		t.Fatalf("expected password-changed event, got %d", len(deps.pub.changes))
	}
}

func TestPasswordChange_WrongOldPassword(t *testing.T) {
	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{})

	err := svc.PasswordChange(context.Background(), "u1", "wrong", "NewSecret1")
	requireErrCode(t, err, "invalid_credentials")

	if len(deps.users.updatedPwd) != 0 {
		t.Fatal("password must not change")
	}
}

func TestVerifyFixedClock_ExpiredExactlyAtBoundary(t *testing.T) {
	// A token presented at exactly expires_at is expired.
	now := time.Now()
	clock := now

	svc, deps := newTestService(t, func(d *svcDeps) { seedVerifiedUser(d) }, Config{
		PasswordResetTokenTTL: time.Hour,
		Now:                   func() time.Time { return clock },
	})

	if err := svc.PasswordResetRequest(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	tok := deps.tokens.lastToken("u1", PurposePasswordReset)

	clock = now.Add(time.Hour)

	err := svc.PasswordResetConfirm(context.Background(), tok, "NewSecret1")
	requireErrCode(t, err, "one_time_token_invalid")
}
