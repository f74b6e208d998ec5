package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lthummus/qlock/internal/harness"
	"github.com/lthummus/qlock/qlock"
)

type TrialRecord struct {
	ID        uuid.UUID
	Kind      qlock.Kind
	Workers   int
	Depth     int
	Expected  int
	Counted   int
	MaxInside int
	Started   time.Time
	Elapsed   time.Duration

	// Error is empty for passing trials.
	Error string
}

func (tr *TrialRecord) Passed() bool {
	return tr.Error == ""
}

func RecordFromResult(r *harness.Result) *TrialRecord {
	tr := &TrialRecord{
		ID:        r.ID,
		Kind:      r.Kind,
		Workers:   r.Workers,
		Depth:     r.Depth,
		Expected:  r.Expected,
		Counted:   r.Counted,
		MaxInside: int(r.MaxInside),
		Started:   r.Started,
		Elapsed:   r.Elapsed,
	}
	if r.Err != nil {
		tr.Error = r.Err.Error()
	}
	return tr
}

type DB interface {
	SaveTrial(ctx context.Context, trial *TrialRecord) error
	RecentTrials(ctx context.Context, limit int) ([]*TrialRecord, error)

	Close() error
}
