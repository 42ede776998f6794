package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techmarks/internal/logger"
	"techmarks/internal/models"
	"techmarks/internal/repository"
	"techmarks/internal/utils"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

type registerInput struct {
	Name     string `form:"name" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=8"`
}

type AuthService struct {
	users UserStore
	log   logger.Logger
}

func NewAuthService(users UserStore, log logger.Logger) *AuthService {
	return &AuthService{users: users, log: log}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := registerInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}

	verr := newValidationError()
	if err := validateStruct(in, verr); err != nil {
		return nil, err
	}
	if len(in.Password) > PasswordMaxBytes {
		verr.Add("password", fmt.Sprintf("password may not be longer than %d bytes", PasswordMaxBytes))
	}
	if verr.HasErrors() {
		return nil, verr
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		verr.Add("email", "email is already registered")
		return nil, verr
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", logger.Uint("user_id", u.ID))
	return u, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
