package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/auth"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/repositories"
	"go.uber.org/zap"
)

type AccountService struct {
	users         UserStore
	lifecycle     *Lifecycle
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

func NewAccountService(
	users UserStore,
	lifecycle *Lifecycle,
	jwtSecret string,
	jwtExpiration time.Duration,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		users:         users,
		lifecycle:     lifecycle,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := models.NormalizeEmail(in.Email)
	u, err := s.signup(ctx, email, in)

	result := "ok"
	if err != nil {
		result = err.Error()
	}
	s.lifecycle.record(ctx, rbac.Actor{}, models.ActionSignupAttempted, models.EntityUser, nil, map[string]any{
		"username": email,
		"email":    email,
		"result":   result,
	})
	if err != nil {
		return nil, err
	}

	s.lifecycle.record(ctx, rbac.ActorFor(u), models.ActionUserSignedUp, models.EntityUser, &u.ID, nil)
	return s.session(u)
}

func (s *AccountService) signup(ctx context.Context, email string, in SignupInput) (*models.User, error) {
	if !models.ValidEmail(email) {
		return nil, invalid("email %q is not valid", in.Email)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, wrap(err, "create user")
	}
	return u, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	u, err := s.authenticate(ctx, email, password)

	s.lifecycle.record(ctx, rbac.Actor{}, models.ActionLoginAttempted, models.EntityUser, nil, map[string]any{
		"username": email,
		"result":   err == nil,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	u.LastLoginAt = &now
	s.lifecycle.record(ctx, rbac.ActorFor(u), models.ActionUserLoggedIn, models.EntityUser, &u.ID, nil)

	return s.session(u)
}

func (s *AccountService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrap(err, "load user")
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) session(u *models.User) (*Session, error) {
	token, err := auth.GenerateJWT(s.jwtSecret, u.ID, s.jwtExpiration)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return wrap(err, "load user")
	}
	if err := auth.CheckPassword(u.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return invalid("%s", err.Error())
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return wrap(err, "update password")
	}

	s.lifecycle.record(ctx, rbac.ActorFor(u), models.ActionPasswordChanged, models.EntityUser, &u.ID, nil)
	return nil
}

func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "user")
	}
	return u, nil
}

// EnsureSuperuser creates a superuser, or promotes and resets the
// password of an existing account with the same email.
func (s *AccountService) EnsureSuperuser(ctx context.Context, email, password string) (*models.User, bool, error) {
	email = models.NormalizeEmail(email)
	if !models.ValidEmail(email) {
		return nil, false, invalid("email %q is not valid", email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, invalid("%s", err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.SetRoles(ctx, existing.ID, true, true); err != nil {
			return nil, false, wrap(err, "set roles")
		}
		if err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, false, wrap(err, "update password")
		}
		existing.IsStaff, existing.IsSuperuser = true, true
		return existing, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, wrap(err, "load user")
	}

	u := &models.User{Email: email, PasswordHash: hash, IsStaff: true, IsSuperuser: true}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, wrap(err, "create user")
	}
	s.lifecycle.record(ctx, rbac.Actor{}, models.ActionUserSignedUp, models.EntityUser, &u.ID, map[string]any{"superuser": true})
	return u, true, nil
}

// Staff lists the users assignable as salesperson.
func (s *AccountService) Staff(ctx context.Context) ([]models.User, error) {
	return s.users.ListStaff(ctx)
}
