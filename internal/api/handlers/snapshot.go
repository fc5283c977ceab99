package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// SnapshotHandler handles on-demand portfolio history snapshots.
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(snapshotService *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
	}
}

// SnapshotResponse reports the outcome of a snapshot run.
type SnapshotResponse struct {
	Recorded int `json:"recorded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Snapshot handles POST requests that record today's portfolio value of every user.
// Users whose portfolio cannot be valued are counted as failed; the others
// are still recorded.
//
// Endpoint: POST /api/system/snapshot
// Response: 200 OK with SnapshotResponse
// Error: 500 Internal Server Error with the summary in details if any user failed
func (h *SnapshotHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snapshotService.RecordSnapshots(r.Context())
	resp := SnapshotResponse{
		Recorded: summary.Recorded,
		Skipped:  summary.Skipped,
		Failed:   summary.Failed,
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRecordSnapshot.Error(), resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
