package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"TaskWheelService/commands"
	"TaskWheelService/models"
	"TaskWheelService/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// AuthService registers users, checks credentials and resolves tokens to owner ids.
type AuthService struct {
	users    repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenManager
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAuthService creates an AuthService. validate must have the "notblank" validation registered.
func NewAuthService(users repository.UserRepository, hasher *PasswordHasher, tokens *TokenManager, validate *validator.Validate, log logrus.FieldLogger) *AuthService {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, validate: validate, log: log}
}

// Register creates a user and returns it with a fresh access token.
func (s *AuthService) Register(ctx context.Context, cmd commands.RegisterCommand) (*models.User, string, error) {
	cmd.FullName = strings.TrimSpace(cmd.FullName)
	cmd.Email = normalizeEmail(cmd.Email)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, "", validationErr(err)
	}

	if _, err := s.users.FindByEmail(ctx, cmd.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{FullName: cmd.FullName, Email: cmd.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.CreateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"task operation": "register user",
		"user":           user.ID,
	}).Info("user registered")
	return user, token, nil
}

// Login checks the credentials and returns the user with a fresh access token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, cmd commands.LoginCommand) (*models.User, string, error) {
	cmd.Email = normalizeEmail(cmd.Email)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, "", validationErr(err)
	}

	user, err := s.users.FindByEmail(ctx, cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !s.hasher.Verify(cmd.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}
	return user, token, nil
}

// Me returns the user behind an owner id.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Authenticate resolves a bearer token to the owner id of the caller.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.VerifyToken(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
