package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lthummus/qlock/internal/db"
	"github.com/lthummus/qlock/internal/harness"
	"github.com/lthummus/qlock/qlock"
)

func newTestDB(t *testing.T) *SQLite {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "qlock.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSaveAndLoadTrials(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	start := time.UnixMilli(time.Now().UnixMilli())

	passed := &db.TrialRecord{
		ID:        uuid.New(),
		Kind:      qlock.KindBlockingMCS,
		Workers:   15000,
		Depth:     5,
		Expected:  90000,
		Counted:   90000,
		MaxInside: 1,
		Started:   start.Add(-time.Minute),
		Elapsed:   1500 * time.Millisecond,
	}
	failed := &db.TrialRecord{
		ID:        uuid.New(),
		Kind:      qlock.KindCLH,
		Workers:   150,
		Depth:     5,
		Expected:  900,
		Counted:   899,
		MaxInside: 2,
		Started:   start,
		Elapsed:   20 * time.Millisecond,
		Error:     "harness: counter does not match expected value",
	}

	require.NoError(t, s.SaveTrial(ctx, passed))
	require.NoError(t, s.SaveTrial(ctx, failed))

	trials, err := s.RecentTrials(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trials, 2)

	// newest first
	assert.Equal(t, failed, trials[0])
	assert.Equal(t, passed, trials[1])
	assert.False(t, trials[0].Passed())
	assert.True(t, trials[1].Passed())

	trials, err = s.RecentTrials(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, trials, 1)
}

func TestSaveDuplicateTrial(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	tr := &db.TrialRecord{ID: uuid.New(), Kind: qlock.KindMCS, Started: time.Now()}
	require.NoError(t, s.SaveTrial(ctx, tr))
	assert.Error(t, s.SaveTrial(ctx, tr))
}

func TestReopenKeepsTrials(t *testing.T) {
	file := filepath.Join(t.TempDir(), "qlock.db")
	ctx := context.Background()

	s, err := NewSQLite(file)
	require.NoError(t, err)
	require.NoError(t, s.SaveTrial(ctx, &db.TrialRecord{ID: uuid.New(), Kind: qlock.KindMCS, Started: time.Now()}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(file)
	require.NoError(t, err)
	defer s.Close()

	trials, err := s.RecentTrials(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, trials, 1)
}

func TestNewSQLiteFromConfig(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
	})

	_, err := NewSQLiteFromConfig()
	assert.ErrorIs(t, err, ErrNoFileConfigured)

	viper.Set("db.file", filepath.Join(t.TempDir(), "from_config.db"))
	s, err := NewSQLiteFromConfig()
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRecordFromResult(t *testing.T) {
	r := &harness.Result{
		ID:        uuid.New(),
		Kind:      qlock.KindBlockingCLH,
		Workers:   3,
		Depth:     5,
		Expected:  18,
		Counted:   18,
		MaxInside: 1,
		Started:   time.Now(),
		Elapsed:   time.Second,
	}

	tr := db.RecordFromResult(r)
	assert.True(t, tr.Passed())
	assert.Equal(t, 1, tr.MaxInside)

	r.Err = errors.New("oops")
	tr = db.RecordFromResult(r)
	assert.Equal(t, "oops", tr.Error)
}
