package cmd

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lthummus/qlock/internal/config"
	"github.com/lthummus/qlock/qlock"
)

const updateDebounceTime = 100 * time.Millisecond

// soaker keeps running rounds until stopped, picking up trial settings
// whenever the config file changes.
type soaker struct {
	kind qlock.Kind
	rng  *rand.Rand

	opts       atomic.Pointer[runOptions]
	lastUpdate atomic.Int64

	passed int
	failed int
}

func newSoaker(k qlock.Kind, rng *rand.Rand) *soaker {
	s := &soaker{kind: k, rng: rng}
	s.reload()
	return s
}

func (s *soaker) reload() {
	if problems := config.ValidateConfig(); len(problems) > 0 {
		log.Warn().Strs("problems", problems).Msg("ignoring invalid config update")
		return
	}

	opts := optionsFromConfig()
	opts.rng = s.rng
	s.opts.Store(&opts)
	s.lastUpdate.Store(time.Now().UnixNano())

	log.Info().Int("depth", opts.depth).Dur("timeout", opts.timeout).Msg("loaded soak settings")
}

func (s *soaker) onConfigChange(in fsnotify.Event) {
	if time.Since(time.Unix(0, s.lastUpdate.Load())) < updateDebounceTime {
		log.Debug().Str("file", in.Name).Msg("updated too quickly, ignoring")
		return
	}
	log.Info().Str("file", in.Name).Str("op", in.Op.String()).Msg("detected config file change")
	s.reload()
}

// round runs a single trial with the current settings. A trial cut short by
// ctx is not counted.
func (s *soaker) round(ctx context.Context) error {
	res, err := runRound(ctx, s.kind, *s.opts.Load())
	if res == nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	if res.Passed() {
		s.passed++
	} else {
		s.failed++
	}
	return nil
}

func (s *soaker) run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := s.round(ctx); err != nil {
			return err
		}
	}

	log.Info().Str("lock", s.kind.String()).Int("passed", s.passed).Int("failed", s.failed).Msg("soak finished")
	if s.failed > 0 {
		return ErrTrialsFailed
	}
	return nil
}

var soakCmd = &cobra.Command{
	Use:   "soak [kind]",
	Short: "run trials against one lock kind until interrupted",
	Long: "keeps running counter trials against a single lock kind (default mcs-blocking) until " +
		"interrupted. Trial settings are reloaded whenever the config file changes.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k := qlock.KindBlockingMCS
		if len(args) == 1 {
			var err error
			k, err = qlock.ParseKind(args[0])
			if err != nil {
				return err
			}
		}

		seed := uint64(time.Now().UnixNano())
		s := newSoaker(k, rand.New(rand.NewPCG(seed, seed>>1)))
		viper.OnConfigChange(s.onConfigChange)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return s.run(ctx)
	},
}
