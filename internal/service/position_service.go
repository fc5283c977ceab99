package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/visibility"
)

// PositionService handles the positions held by users.
type PositionService struct {
	userRepo     *repository.UserRepository
	positionRepo *repository.PositionRepository
	visibility   *visibility.Registry
	now          func() time.Time
}

// NewPositionService creates a new PositionService.
func NewPositionService(
	userRepo *repository.UserRepository,
	positionRepo *repository.PositionRepository,
	vis *visibility.Registry,
) *PositionService {
	return &PositionService{
		userRepo:     userRepo,
		positionRepo: positionRepo,
		visibility:   vis,
		now:          time.Now,
	}
}

// GetPositions returns the positions of username in the order they were added.
// Returns apperrors.ErrUserNotFound for unknown users.
func (s *PositionService) GetPositions(username string) ([]model.Position, error) {
	if _, err := s.userRepo.GetUser(username); err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.GetPositions(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePositions, err)
	}
	return positions, nil
}

// AddPosition validates req and stores it as a new position of username.
// The ticker is stored upper case. Validation failures are returned as
// *validation.Error before anything is stored.
func (s *PositionService) AddPosition(ctx context.Context, username string, req request.CreatePositionRequest) (model.Position, error) {
	now := s.now().UTC()
	if err := validation.ValidateCreatePosition(req, now); err != nil {
		return model.Position{}, err
	}
	if _, err := s.userRepo.GetUser(username); err != nil {
		return model.Position{}, err
	}

	p := model.Position{
		ID:            uuid.New().String(),
		Username:      username,
		Ticker:        strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		CreatedAt:     now.Truncate(time.Second),
	}
	if req.PurchaseDate != nil {
		d, err := validation.ParseTime(strings.TrimSpace(*req.PurchaseDate))
		if err != nil {
			return model.Position{}, &validation.Error{Fields: map[string]string{"purchase_date": err.Error()}}
		}
		p.PurchaseDate = &d
	}

	if err := s.positionRepo.InsertPosition(ctx, p); err != nil {
		return model.Position{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAddPosition, err)
	}

	c, err := s.visibility.Get(username, func() ([]string, error) {
		return s.positionRepo.GetTickers(username)
	})
	if err == nil {
		c.Track(p.Ticker)
	}
	return p, nil
}
