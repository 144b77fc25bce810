package services

import (
	"context"
	"errors"
	"testing"

	"logistics-api/apperr"
	"logistics-api/models"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{
		Username: "alice", Password: "secret123", Role: models.RoleCustomer, Phone: "13811112222",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}

	token, got, err := f.users.Login(ctx, "alice", "secret123")
	if err != nil || token == "" || got.ID != u.ID {
		t.Fatalf("login: token=%q user=%+v err=%v", token, got, err)
	}

	_, _, wrongPass := f.users.Login(ctx, "alice", "nope")
	_, _, unknown := f.users.Login(ctx, "nobody", "secret123")
	if !errors.Is(wrongPass, apperr.ErrUnauthorized) || !errors.Is(unknown, apperr.ErrUnauthorized) {
		t.Fatalf("bad credentials: %v / %v", wrongPass, unknown)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := RegisterInput{Username: "bob", Password: "secret123", Role: models.RoleDriver, Phone: "13811113333"}
	if _, err := f.users.Register(ctx, in); err != nil {
		t.Fatal(err)
	}

	samePhone := in
	samePhone.Username = "bob2"
	if _, err := f.users.Register(ctx, samePhone); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("duplicate phone: %v", err)
	}
	sameName := in
	sameName.Phone = ""
	if _, err := f.users.Register(ctx, sameName); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("duplicate username: %v", err)
	}

	badRole := in
	badRole.Username, badRole.Phone, badRole.Role = "carol", "", "superuser"
	if _, err := f.users.Register(ctx, badRole); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("invalid role: %v", err)
	}
}

func TestUpdateInfoAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, RegisterInput{Username: "dave", Password: "secret123", Role: models.RoleCustomer})
	if err != nil {
		t.Fatal(err)
	}
	caller := models.Caller{ID: u.ID, Username: u.Username, Role: u.Role}

	phone, name := "13800001111", "Dave"
	updated, err := f.users.UpdateInfo(ctx, caller, ProfileInput{Phone: &phone, RealName: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Phone == nil || *updated.Phone != phone || updated.RealName != name || updated.Role != models.RoleCustomer {
		t.Fatalf("unexpected profile %+v", updated)
	}

	if err := f.users.ResetPassword(ctx, caller, "wrong", "newsecret1"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("wrong old password: %v", err)
	}
	if err := f.users.ResetPassword(ctx, caller, "secret123", "newsecret1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.users.Login(ctx, "dave", "newsecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.users.List(ctx, f.driver, "", 1, 10); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("driver: %v", err)
	}
	page, err := f.users.List(ctx, f.admin, models.RoleDriver, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("drivers total = %d", page.Total)
	}
}
