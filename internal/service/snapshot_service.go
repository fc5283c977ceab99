package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
)

// SnapshotSummary counts the outcome of a snapshot run.
type SnapshotSummary struct {
	Recorded int `json:"recorded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SnapshotService records the daily total value of every portfolio into the
// history store. Running it twice on one day replaces that day's values.
type SnapshotService struct {
	userRepo    *repository.UserRepository
	historyRepo *repository.HistoryRepository
	portfolio   *PortfolioService
	log         zerolog.Logger
	now         func() time.Time
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(
	userRepo *repository.UserRepository,
	historyRepo *repository.HistoryRepository,
	portfolio *PortfolioService,
	log zerolog.Logger,
) *SnapshotService {
	return &SnapshotService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		portfolio:   portfolio,
		log:         log.With().Str("service", "snapshot").Logger(),
		now:         time.Now,
	}
}

// RecordSnapshot values the portfolio of username and stores it under
// today's date. Portfolios without any priced position are not recorded and
// return false.
func (s *SnapshotService) RecordSnapshot(ctx context.Context, username string) (bool, error) {
	v, err := s.portfolio.GetValuation(ctx, username)
	if err != nil {
		return false, err
	}
	if v.PricedPositions == 0 {
		return false, nil
	}

	now := s.now()
	snap := model.PortfolioSnapshot{
		Username:     username,
		Date:         history.DateOf(now),
		Value:        v.TotalValue,
		Cost:         v.TotalCost,
		CalculatedAt: now.UTC(),
	}
	if err := s.historyRepo.UpsertSnapshot(ctx, snap); err != nil {
		return false, fmt.Errorf("%w: %w", apperrors.ErrFailedToRecordSnapshot, err)
	}
	return true, nil
}

// RecordSnapshots records a snapshot for every user. A failing user does not
// stop the run; the failures are joined into the returned error.
func (s *SnapshotService) RecordSnapshots(ctx context.Context) (SnapshotSummary, error) {
	var summary SnapshotSummary

	usernames, err := s.userRepo.ListUsernames()
	if err != nil {
		return summary, fmt.Errorf("%w: %w", apperrors.ErrFailedToRecordSnapshot, err)
	}

	var errs []error
	for _, username := range usernames {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		recorded, err := s.RecordSnapshot(ctx, username)
		switch {
		case err != nil:
			summary.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", username, err))
			s.log.Warn().Err(err).Str("username", username).Msg("Failed to record snapshot")
		case recorded:
			summary.Recorded++
		default:
			summary.Skipped++
		}
	}

	s.log.Info().
		Int("recorded", summary.Recorded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Snapshot run finished")

	if len(errs) > 0 {
		return summary, fmt.Errorf("%w: %w", apperrors.ErrFailedToRecordSnapshot, errors.Join(errs...))
	}
	return summary, nil
}
