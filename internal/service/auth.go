package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthService struct {
	Repo   repo.UserRepo
	Tokens *tokens.Issuer
	Events events.Publisher
}

type LoginResult struct {
	Token string
	User  models.PublicUser
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, fromRepo(err)
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	user, err := s.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, req.Email)
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return &LoginResult{Token: token, User: user.Public()}, nil
}
