package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/chronoflow/internal/apperror"
	"github.com/sakif/chronoflow/internal/auth"
	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/repository"
)

// Client-facing messages. The login failure text is identical for an unknown
// email and a wrong password.
const (
	MsgSignupFieldsRequired = "All fields are required"
	MsgLoginFieldsRequired  = "Email and password are required"
	MsgUserExists           = "User already exists"
	MsgInvalidCredentials   = "Invalid credentials"
)

type SignupInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what signup and login hand back to the handler. Token is
// empty when no token service is configured.
type AuthResult struct {
	User      model.User
	Token     string
	ExpiresAt time.Time
}

// AuthService registers and authenticates users.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService // nil disables token issuance
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Signup creates a user. The email is checked up front and again by the
// store's unique index, so two racing signups cannot both succeed.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := checkRequired(in, MsgSignupFieldsRequired); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict(MsgUserExists)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return s.result(user)
}

// Login checks credentials. Every failure past field validation is reported
// as the same Unauthorized error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := checkRequired(in, MsgLoginFieldsRequired); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("login for unknown email", slog.String("email", in.Email))
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, auth.ErrMismatch) {
			// Corrupt stored hash. Still a plain 401 to the client.
			s.logger.Warn("stored password hash unreadable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.result(user)
}

// GetUser returns the public view of a user by store id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) result(user *model.User) (*AuthResult, error) {
	res := &AuthResult{User: user.Public()}
	if s.tokens == nil {
		return res, nil
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token for user %s: %w", user.ID, err)
	}
	res.Token = token
	res.ExpiresAt = time.Now().Add(s.tokens.TTL())
	return res, nil
}
