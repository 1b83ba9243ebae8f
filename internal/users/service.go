package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/security"
)

// Service defines account and session operations.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, actor auth.Actor) error
	Me(ctx context.Context, actor auth.Actor) (*PublicUser, error)
	List(ctx context.Context, actor auth.Actor) ([]PublicUser, error)
	Create(ctx context.Context, actor auth.Actor, input CreateUserInput) (*PublicUser, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds a users service with the required dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:     repo,
		jwt:      jwtCfg,
		password: passwordCfg,
		now:      time.Now,
	}, nil
}

// Login verifies credentials, opens a work session and mints a token. The
// error is the same for a missing user and a bad password.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.repo.OpenSession(ctx, &models.WorkSession{UserID: user.ID}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open work session")
	}

	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Logout closes the latest open work session, recording its duration.
// A missing open session is not an error.
func (s *service) Logout(ctx context.Context, actor auth.Actor) error {
	session, err := s.repo.FindOpenSession(ctx, actor.UserID)
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find open session")
	}

	logoutTime := s.now().UTC()
	minutes := int(logoutTime.Sub(session.LoginTime).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	if err := s.repo.CloseSession(ctx, session.ID, logoutTime, minutes); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, actor auth.Actor) (*PublicUser, error) {
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return &PublicUser{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]PublicUser, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	public := make([]PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, PublicUser{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return public, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateUserInput) (*PublicUser, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create users")
	}
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		Role:         input.Role,
	}
	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return &PublicUser{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete users")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if id == actor.UserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}

	rows, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
