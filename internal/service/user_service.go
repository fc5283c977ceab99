package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/visibility"
)

// UserService handles user accounts. Accounts carry no credentials; logging
// in with a new username creates it.
type UserService struct {
	userRepo   *repository.UserRepository
	visibility *visibility.Registry
	log        zerolog.Logger
	now        func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, vis *visibility.Registry, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		visibility: vis,
		log:        log.With().Str("service", "user").Logger(),
		now:        time.Now,
	}
}

// Login creates the user if it does not exist yet and starts a fresh session,
// with every chart series visible again.
// Returns true when the user was created.
func (s *UserService) Login(ctx context.Context, username string) (bool, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return false, err
	}

	created, err := s.userRepo.EnsureUser(ctx, username, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to log in %s: %w", username, err)
	}
	s.visibility.Reset(username)

	if created {
		s.log.Info().Str("username", username).Msg("Created user")
	}
	return created, nil
}

// GetUser returns the user or apperrors.ErrUserNotFound.
func (s *UserService) GetUser(username string) (model.User, error) {
	return s.userRepo.GetUser(username)
}

// ListUsernames returns every known username.
func (s *UserService) ListUsernames() ([]string, error) {
	return s.userRepo.ListUsernames()
}
