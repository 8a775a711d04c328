package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"metrodoc/internal/auth"
	"metrodoc/internal/model"
	"metrodoc/internal/repository"
)

const defaultRole = "user"

// AuthService handles accounts and token issuance.
type AuthService interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
	clock  func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, issuer *auth.TokenIssuer) AuthService {
	return &authService{users: users, issuer: issuer, clock: time.Now}
}

func (s *authService) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, newError(model.ErrInvalid, "email and password are required")
	}
	acc, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(acc.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(acc.User)
}

func (s *authService) Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error) {
	name := strings.TrimSpace(reg.Name)
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	switch {
	case name == "":
		return nil, newError(model.ErrInvalid, "name is required")
	case !validEmail(email):
		return nil, newError(model.ErrInvalid, "a valid email is required")
	case len(reg.Password) < auth.MinPasswordLength:
		return nil, newError(model.ErrInvalid, "password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	acc, err := s.users.Create(ctx, &repository.Account{
		User:         model.User{ID: uuid.New().String(), Name: name, Email: email, Role: defaultRole},
		PasswordHash: hash,
		CreatedAt:    s.clock().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateID) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return s.issue(acc.User)
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	acc, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &acc.User, nil
}

func (s *authService) issue(u model.User) (*model.AuthResult, error) {
	token, _, err := s.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.AuthResult{User: u, Token: token}, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
