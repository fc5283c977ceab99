package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// WelcomeMessage is returned by the API root.
const WelcomeMessage = "Welcome to the Portfolio Tracker API"

// migrationMessage is reported while the schema has pending migrations.
const migrationMessage = "Database schema is behind the application; run the server to apply pending migrations"

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Welcome handles GET / with a fixed greeting.
func (h *SystemHandler) Welcome(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: WelcomeMessage})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		respondJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	respondJSON(w, http.StatusOK, response)
}

// VersionInfoResponse represents the version check response containing application
// and database version information, feature availability, and migration status.
type VersionInfoResponse struct {
	AppVersion       string          `json:"app_version"`
	DbVersion        string          `json:"db_version"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migration_needed"`
	MigrationMessage *string         `json:"migration_message"`
}

// Version handles GET requests to retrieve version information and feature availability.
// Returns the application version, schema version, available features, and whether
// migrations are pending.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfoResponse
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		respondServiceError(w, err, "failed to get version information")
		return
	}

	response := VersionInfoResponse{
		AppVersion:      version.AppVersion,
		DbVersion:       version.DbVersion,
		Features:        version.Features,
		MigrationNeeded: version.MigrationNeeded,
	}
	if version.MigrationNeeded {
		msg := migrationMessage
		response.MigrationMessage = &msg
	}

	respondJSON(w, http.StatusOK, response)
}
