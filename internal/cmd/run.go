package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lthummus/qlock/internal/config"
	"github.com/lthummus/qlock/internal/db"
	"github.com/lthummus/qlock/internal/db/sqlite"
	"github.com/lthummus/qlock/internal/harness"
	"github.com/lthummus/qlock/internal/render"
	"github.com/lthummus/qlock/qlock"
)

var (
	ErrTrialsFailed = errors.New("qlock: one or more trials failed")
)

var (
	rounds  int
	workers int
	seed    uint64
	record  bool
)

func init() {
	runCmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "rounds per lock kind (defaults to trial.rounds)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "fixed worker count (defaults to a random count from the configured range)")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "seed for worker counts (defaults to the current time)")
	runCmd.Flags().BoolVar(&record, "record", false, "save results to the history database")
}

type runOptions struct {
	rounds  int
	workers int
	depth   int
	timeout time.Duration
	rng     *rand.Rand
}

func optionsFromConfig() runOptions {
	config.Lock.RLock()
	defer config.Lock.RUnlock()

	return runOptions{
		rounds:  viper.GetInt(config.KeyTrialRounds),
		depth:   viper.GetInt(config.KeyTrialDepth),
		timeout: viper.GetDuration(config.KeyTrialTimeout),
	}
}

func parseKinds(args []string) ([]qlock.Kind, error) {
	if len(args) == 0 {
		return qlock.Kinds(), nil
	}

	kinds := make([]qlock.Kind, 0, len(args))
	for _, curr := range args {
		k, err := qlock.ParseKind(curr)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (o runOptions) workersFor(k qlock.Kind) int {
	if o.workers > 0 {
		return o.workers
	}
	minWorkers, maxWorkers := config.WorkerRange(k)
	return harness.RandomWorkers(o.rng, minWorkers, maxWorkers)
}

// runRound builds a fresh lock and runs one trial on it.
func runRound(ctx context.Context, k qlock.Kind, opts runOptions) (*harness.Result, error) {
	l, err := qlock.New(k, config.LockOptions()...)
	if err != nil {
		return nil, err
	}

	return harness.Run(ctx, l, harness.Trial{
		Kind:    k,
		Workers: opts.workersFor(k),
		Depth:   opts.depth,
		Timeout: opts.timeout,
	})
}

func runTrials(ctx context.Context, kinds []qlock.Kind, opts runOptions, store db.DB, out io.Writer) ([]*harness.Result, error) {
	var results []*harness.Result
	failed := false

	for _, k := range kinds {
		log.Info().Str("lock", k.String()).Int("rounds", opts.rounds).Msg("testing lock")
		for range opts.rounds {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}

			res, err := runRound(ctx, k, opts)
			if res == nil {
				return results, err
			}
			if err != nil {
				failed = true
			}
			results = append(results, res)

			if store != nil {
				if err := store.SaveTrial(ctx, db.RecordFromResult(res)); err != nil {
					return results, fmt.Errorf("qlock: runTrials: could not record trial: %w", err)
				}
			}
		}
	}

	if err := render.Results(out, results); err != nil {
		return results, err
	}

	if failed {
		return results, ErrTrialsFailed
	}
	return results, nil
}

var runCmd = &cobra.Command{
	Use:   "run [kind...]",
	Short: "run counter trials against one or more lock kinds",
	Long: "runs counter trials against the given lock kinds (clh, clh-blocking, mcs, mcs-blocking). " +
		"With no arguments every kind is tested.",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := parseKinds(args)
		if err != nil {
			return err
		}

		opts := optionsFromConfig()
		if rounds > 0 {
			opts.rounds = rounds
		}
		opts.workers = workers
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		opts.rng = rand.New(rand.NewPCG(seed, seed>>1))
		log.Debug().Uint64("seed", seed).Msg("seeded worker counts")

		var store db.DB
		if record {
			s, err := sqlite.NewSQLiteFromConfig()
			if err != nil {
				return err
			}
			defer s.Close()
			store = s
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		_, err = runTrials(ctx, kinds, opts, store, cmd.OutOrStdout())
		return err
	},
}
