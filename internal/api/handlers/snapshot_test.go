package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/testutil"
)

func TestSnapshotHandler_Snapshot(t *testing.T) {
	t.Run("records every user with priced positions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewStubResolver().WithPrice("AAPL", 160))
		handler := NewSnapshotHandler(svc.Snapshot)

		testutil.CreateUser(t, db, "alice")
		testutil.CreatePosition(t, db, "alice", "AAPL", 10, 150)
		testutil.CreateUser(t, db, "bob")

		req := httptest.NewRequest(http.MethodPost, "/api/system/snapshot", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.Snapshot(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response SnapshotResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		want := SnapshotResponse{Recorded: 1, Skipped: 1}
		if response != want {
			t.Errorf("Expected %+v, got %+v", want, response)
		}

		points, err := svc.Portfolio.GetHistory("alice")
		if err != nil || len(points) != 1 || points[0].Value != 1600 {
			t.Errorf("Expected one snapshot of 1600, got %v (err %v)", points, err)
		}
	})

	t.Run("returns 500 with the summary when a user fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := testutil.NewStubResolver().
			WithPrice("AAPL", 160).
			WithError("DOWN", apperrors.ErrUpstreamUnavailable)
		svc := testutil.NewTestServices(t, db, resolver)
		handler := NewSnapshotHandler(svc.Snapshot)

		testutil.CreateUser(t, db, "alice")
		testutil.CreatePosition(t, db, "alice", "AAPL", 10, 150)
		testutil.CreateUser(t, db, "carol")
		testutil.CreatePosition(t, db, "carol", "DOWN", 1, 10)

		req := httptest.NewRequest(http.MethodPost, "/api/system/snapshot", nil)
		w := httptest.NewRecorder()

		handler.Snapshot(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}

		var response struct {
			Error   string           `json:"error"`
			Details SnapshotResponse `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		want := SnapshotResponse{Recorded: 1, Failed: 1}
		if response.Details != want {
			t.Errorf("Expected %+v, got %+v", want, response.Details)
		}
	})
}
