package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cmcs/claimserver/types"
)

func newUserService() (*UserService, *mockUserStore) {
	users := newMockUserStore()
	return NewUserService(users, nil), users
}

func TestUserServiceCreateAndAuthenticate(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	created, err := service.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za",
		Role:  types.RoleLecturer, HourlyRate: 150,
	}, "s3cret-pass")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if created.PasswordHash == "" || created.PasswordSalt == "" {
		t.Fatalf("expected stored credentials")
	}

	got, err := service.Authenticate(ctx, "lindiwe.dlamini@university.ac.za", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("authenticated wrong user: %d", got.ID)
	}
}

func TestAuthenticateFailsClosed(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	if _, err := service.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za", Role: types.RoleLecturer,
	}, "s3cret-pass"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Authenticate(ctx, "lindiwe.dlamini@university.ac.za", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.Authenticate(ctx, "nobody@university.ac.za", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	// Lookups are exact: a differently-cased email does not match.
	if _, err := service.Authenticate(ctx, "LINDIWE.DLAMINI@university.ac.za", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("cased email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	if _, err := service.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za", Role: types.RoleLecturer,
	}, "s3cret-pass"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := service.Create(ctx, types.User{
		FirstName: "Other", LastName: "Person",
		Email: "Lindiwe.Dlamini@University.ac.za", Role: types.RoleLecturer,
	}, "another-pass")
	var verr ValidationError
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected duplicate email ValidationError, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	cases := []struct {
		name     string
		user     types.User
		password string
		field    string
	}{
		{
			"short password",
			types.User{FirstName: "A", LastName: "B", Email: "a@b.c", Role: types.RoleLecturer},
			"short",
			"password",
		},
		{
			"bad role",
			types.User{FirstName: "A", LastName: "B", Email: "a@b.c", Role: "Admin"},
			"s3cret-pass",
			"role",
		},
		{
			"bad email",
			types.User{FirstName: "A", LastName: "B", Email: "not-an-email", Role: types.RoleLecturer},
			"s3cret-pass",
			"email",
		},
		{
			"missing name",
			types.User{LastName: "B", Email: "a@b.c", Role: types.RoleLecturer},
			"s3cret-pass",
			"first_name",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(ctx, tc.user, tc.password)
			var verr ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected ValidationError on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestResetPassword(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	created, err := service.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za", Role: types.RoleLecturer,
	}, "old-password")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.ResetPassword(ctx, created.ID, "new-password"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := service.Authenticate(ctx, created.Email, "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := service.Authenticate(ctx, created.Email, "new-password"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if err := service.ResetPassword(ctx, created.ID, "tiny"); err == nil {
		t.Fatalf("expected error for short replacement password")
	}
}

func TestUpdateKeepsCredentials(t *testing.T) {
	service, users := newUserService()
	ctx := context.Background()

	created, err := service.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za", Role: types.RoleLecturer, HourlyRate: 150,
	}, "s3cret-pass")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.HourlyRate = 200
	created.PhoneNumber = "0821234567"
	if _, err := service.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.HourlyRate != 200 || stored.PhoneNumber != "0821234567" {
		t.Fatalf("update not applied: %+v", stored)
	}
	if _, err := service.Authenticate(ctx, stored.Email, "s3cret-pass"); err != nil {
		t.Fatalf("credentials lost on update: %v", err)
	}
}
