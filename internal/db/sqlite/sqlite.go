package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/lthummus/qlock/internal/config"
	"github.com/lthummus/qlock/internal/db"
	"github.com/lthummus/qlock/qlock"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

var (
	ErrNoFileConfigured = errors.New("db: no database file configured")
)

var _ db.DB = (*SQLite)(nil)

func NewSQLiteFromConfig() (*SQLite, error) {
	config.Lock.RLock()
	file := viper.GetString(config.KeyDBFile)
	config.Lock.RUnlock()

	if file == "" {
		return nil, fmt.Errorf("db: NewSQLiteFromConfig: %w", ErrNoFileConfigured)
	}

	return NewSQLite(file)
}

func NewSQLite(file string) (*SQLite, error) {
	absDBFile, err := filepath.Abs(file)
	if err != nil {
		log.Warn().Str("raw_db_file", file).Err(err).Msg("could not get db file absolute path")
	}

	log.Info().Str("raw_db_file", file).Str("abs_db_file", absDBFile).Msg("starting database initialization")

	database, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("db: NewSQLite: could not open db: %w", err)
	}

	err = migrateDatabase(database)
	if err != nil {
		return nil, fmt.Errorf("db: NewSQLite: could not migrate database: %w", err)
	}

	// the migration driver closes the handle it was given
	database, err = sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("db: NewSQLite: could not open db: %w", err)
	}

	log.Info().Str("raw_db_file", file).Str("abs_db_file", absDBFile).Msg("finished database initialization")

	return &SQLite{db: database}, nil
}

func (s *SQLite) SaveTrial(ctx context.Context, trial *db.TrialRecord) error {
	var trialErr *string
	if trial.Error != "" {
		trialErr = &trial.Error
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trials (id, kind, workers, depth, expected, counted, max_inside, started_at, elapsed_ns, error) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		trial.ID.String(),
		trial.Kind.String(),
		trial.Workers,
		trial.Depth,
		trial.Expected,
		trial.Counted,
		trial.MaxInside,
		trial.Started.UnixMilli(),
		trial.Elapsed.Nanoseconds(),
		trialErr,
	)
	if err != nil {
		log.Error().Err(err).Str("trial_id", trial.ID.String()).Msg("could not save trial")
		return fmt.Errorf("db: sqlite: SaveTrial: could not insert trial: %w", err)
	}

	return nil
}

func (s *SQLite) RecentTrials(ctx context.Context, limit int) ([]*db.TrialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, workers, depth, expected, counted, max_inside, started_at, elapsed_ns, error FROM trials ORDER BY started_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("db: sqlite: RecentTrials: could not query trials: %w", err)
	}
	defer rows.Close()

	var trials []*db.TrialRecord
	for rows.Next() {
		var id string
		var kind string
		var startedAt int64
		var elapsed int64
		var trialErr *string

		tr := &db.TrialRecord{}
		err = rows.Scan(&id, &kind, &tr.Workers, &tr.Depth, &tr.Expected, &tr.Counted, &tr.MaxInside, &startedAt, &elapsed, &trialErr)
		if err != nil {
			return nil, fmt.Errorf("db: sqlite: RecentTrials: could not scan row: %w", err)
		}

		tr.ID, err = uuid.Parse(id)
		if err != nil {
			log.Warn().Err(err).Str("trial_id", id).Msg("could not parse trial id")
			return nil, fmt.Errorf("db: sqlite: RecentTrials: bad trial id: %w", err)
		}

		tr.Kind = qlock.Kind(kind)
		tr.Started = time.UnixMilli(startedAt)
		tr.Elapsed = time.Duration(elapsed)
		if trialErr != nil {
			tr.Error = *trialErr
		}

		trials = append(trials, tr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("db: sqlite: RecentTrials: %w", err)
	}

	return trials, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
