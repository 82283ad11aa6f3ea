package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/cmcs/claimserver/internal/auth"
	"github.com/cmcs/claimserver/internal/store"
	"github.com/cmcs/claimserver/types"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetPassword(ctx context.Context, id int, digest, salt string) error
}

// UserService implements account management and authentication.
type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create registers a new account with an initial password. Duplicate
// emails are rejected case-insensitively.
func (s *UserService) Create(ctx context.Context, user types.User, password string) (types.User, error) {
	if err := s.validate(ctx, user, 0); err != nil {
		return types.User{}, err
	}
	if len(password) < MinPasswordLength {
		return types.User{}, ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	digest, salt, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = digest
	user.PasswordSalt = salt

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	s.logger.Info("user created",
		zap.Int("user_id", created.ID),
		zap.String("role", created.Role),
	)
	return created, nil
}

// Update overwrites the editable fields of an account. Credentials are
// untouched; use ResetPassword for those.
func (s *UserService) Update(ctx context.Context, user types.User) (types.User, error) {
	if err := s.validate(ctx, user, user.ID); err != nil {
		return types.User{}, err
	}
	return s.users.Update(ctx, user)
}

// Authenticate verifies an email/password pair. Every failure mode
// returns ErrInvalidCredentials: unknown email, empty stored digest,
// or mismatch.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if user.PasswordHash == "" || !auth.VerifyPassword(password, user.PasswordHash, user.PasswordSalt) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword replaces a user's credentials with a fresh salt and
// digest.
func (s *UserService) ResetPassword(ctx context.Context, userID int, password string) error {
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	digest, salt, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, userID, digest, salt); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.Int("user_id", userID))
	return nil
}

func (s *UserService) validate(ctx context.Context, user types.User, selfID int) error {
	if strings.TrimSpace(user.FirstName) == "" {
		return ValidationError{Field: "first_name", Message: "is required"}
	}
	if strings.TrimSpace(user.LastName) == "" {
		return ValidationError{Field: "last_name", Message: "is required"}
	}
	if !strings.Contains(user.Email, "@") {
		return ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	switch user.Role {
	case types.RoleLecturer, types.RoleCoordinator, types.RoleManager, types.RoleHR:
	default:
		return ValidationError{Field: "role", Message: "must be one of Lecturer, Coordinator, Manager, HR"}
	}
	if user.HourlyRate < 0 {
		return ValidationError{Field: "hourly_rate", Message: "must not be negative"}
	}

	existing, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != selfID && strings.EqualFold(other.Email, user.Email) {
			return ValidationError{Field: "email", Message: "is already in use"}
		}
	}
	return nil
}
