package service

import (
	"context"
	"testing"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 60)
	// Minimum bcrypt cost keeps the tests fast.
	return NewAuthService(users, tokens, 4), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:     "Agent@Desk.IO",
		Password:  "correct-horse",
		FirstName: "Ana",
		LastName:  "Souza",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "agent@desk.io" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != domain.RoleAgent {
		t.Errorf("default role = %q, want agent", user.Role)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in the clear")
	}

	result, err := svc.Login(ctx, "agent@desk.io", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("no token issued")
	}
	if result.User.ID != user.ID {
		t.Errorf("login user = %q, want %q", result.User.ID, user.ID)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "agent@desk.io", Password: "correct-horse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "nobody@desk.io", "whatever"); err == nil {
		t.Error("unknown email accepted")
	}
	if _, err := svc.Login(ctx, "agent@desk.io", "wrong"); err == nil {
		t.Error("wrong password accepted")
	}

	for id, user := range users.users {
		user.IsActive = false
		users.users[id] = user
	}
	if _, err := svc.Login(ctx, "agent@desk.io", "correct-horse"); err == nil {
		t.Error("deactivated account accepted")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "bad", Password: "long-enough"}); err == nil {
		t.Error("invalid email accepted")
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.io", Password: "short"}); err == nil {
		t.Error("short password accepted")
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.io", Password: "long-enough", Role: "owner"}); err == nil {
		t.Error("unknown role accepted")
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.io", Password: "long-enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.io", Password: "long-enough"}); err == nil {
		t.Error("duplicate email accepted")
	}
}
