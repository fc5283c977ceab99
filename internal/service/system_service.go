package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strconv"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Version is the application version. It is overridden at build time with
// -ldflags "-X github.com/ndewijer/Portfolio-Tracker-Backend/internal/service.Version=...".
var Version = "dev"

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	features map[string]bool
}

// NewSystemService creates a new SystemService. features lists optional
// capabilities and whether they are enabled.
func NewSystemService(db *sql.DB, features map[string]bool) *SystemService {
	return &SystemService{
		db:       db,
		features: features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version and the schema state.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	version, pending, err := database.SchemaStatus(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	return model.VersionInfo{
		AppVersion:      Version,
		DbVersion:       strconv.FormatInt(version, 10),
		Features:        maps.Clone(s.features),
		MigrationNeeded: pending,
	}, nil
}
