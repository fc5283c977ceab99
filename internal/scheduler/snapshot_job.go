package scheduler

import (
	"context"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// snapshotTimeout bounds one snapshot run.
const snapshotTimeout = 10 * time.Minute

// SnapshotRecorder records the portfolio value of every user.
type SnapshotRecorder interface {
	RecordSnapshots(ctx context.Context) (service.SnapshotSummary, error)
}

// SnapshotJob appends today's portfolio value of every user to their history.
type SnapshotJob struct {
	recorder SnapshotRecorder
}

// NewSnapshotJob creates the daily history snapshot job.
func NewSnapshotJob(recorder SnapshotRecorder) *SnapshotJob {
	return &SnapshotJob{recorder: recorder}
}

// Name implements Job.
func (j *SnapshotJob) Name() string { return "portfolio_snapshot" }

// Run implements Job.
func (j *SnapshotJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	_, err := j.recorder.RecordSnapshots(ctx)
	return err
}
