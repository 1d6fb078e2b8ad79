package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lyriclingo/backend/internal/auth"
	"github.com/lyriclingo/backend/internal/models"
	"github.com/lyriclingo/backend/internal/repositories"
)

// Auth errors surfaced to handlers
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Create inserts a new user and sets its generated ID.
	Create(ctx context.Context, user *models.User) error
	// GetByEmailOrUsername retrieves a user by email or username.
	//
	// Returns repositories.ErrUserNotFound when no such user exists.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// authService implements registration and login
type authService struct {
	userRepo       UserRepository
	tokenGenerator *auth.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator *auth.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Register validates the request, hashes the password and creates the user
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if len(username) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters")
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokenGenerator.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID))

	return &models.AuthResponse{AccessToken: token, User: *user}, nil
}

// Login authenticates by email or username and password
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmailOrUsername(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Hide whether the account exists
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{AccessToken: token, User: *user}, nil
}
