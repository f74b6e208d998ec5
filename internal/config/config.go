package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/lthummus/qlock/qlock"
)

const (
	KeyTrialRounds  = "trial.rounds"
	KeyTrialDepth   = "trial.depth"
	KeyTrialTimeout = "trial.timeout"

	KeyStrictUnlock = "locks.strict_unlock"
	KeySpinYield    = "locks.spin_yield"

	KeyDBFile = "db.file"

	DefaultRounds    = 20
	DefaultDepth     = 5
	DefaultTimeout   = 30 * time.Second
	DefaultSpinYield = 64
)

var (
	Lock sync.RWMutex

	initLock  sync.Mutex
	hasInit   bool
	initError error
)

// default worker ranges per lock kind; the spinning locks get small ranges
// since every waiter burns a CPU
var defaultWorkers = map[qlock.Kind][2]int{
	qlock.KindCLH:         {100, 200},
	qlock.KindMCS:         {100, 200},
	qlock.KindBlockingCLH: {10000, 20000},
	qlock.KindBlockingMCS: {10000, 20000},
}

func IsProductionMode() bool {
	return os.Getenv("ENVIRONMENT") == "prod"
}

func IsDebugLoggingEnabled() bool {
	return os.Getenv("DEBUG_LOG") == "true"
}

func MinWorkersKey(k qlock.Kind) string {
	return fmt.Sprintf("locks.%s.min_workers", k)
}

func MaxWorkersKey(k qlock.Kind) string {
	return fmt.Sprintf("locks.%s.max_workers", k)
}

func SetDefaults() {
	viper.SetDefault(KeyTrialRounds, DefaultRounds)
	viper.SetDefault(KeyTrialDepth, DefaultDepth)
	viper.SetDefault(KeyTrialTimeout, DefaultTimeout.String())
	viper.SetDefault(KeyStrictUnlock, false)
	viper.SetDefault(KeySpinYield, DefaultSpinYield)
	viper.SetDefault(KeyDBFile, "")

	for k, v := range defaultWorkers {
		viper.SetDefault(MinWorkersKey(k), v[0])
		viper.SetDefault(MaxWorkersKey(k), v[1])
	}
}

// Init loads the config file once. A missing file is reported but not
// fatal since every setting has a default.
func Init() error {
	initLock.Lock()
	defer initLock.Unlock()

	if hasInit {
		return initError
	}
	hasInit = true

	Lock.Lock()
	defer Lock.Unlock()

	SetDefaults()

	configFilePath := os.Getenv("CONFIG_FILE_PATH")
	if configFilePath == "" {
		viper.SetConfigName("qlock")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(configFilePath)
	}

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			log.Info().Msg("no config file found, using defaults")
			initError = err
			return initError
		}

		log.Fatal().Str("config_file", viper.ConfigFileUsed()).Err(err).Msg("could not read config")
	}
	log.Info().Str("config_file_path", viper.ConfigFileUsed()).Msg("initialized configuration")
	viper.WatchConfig()

	return nil
}

// LockOptions translates the locks.* settings into lock options.
func LockOptions() []qlock.Option {
	Lock.RLock()
	defer Lock.RUnlock()

	opts := []qlock.Option{qlock.WithSpinYield(viper.GetInt(KeySpinYield))}
	if viper.GetBool(KeyStrictUnlock) {
		opts = append(opts, qlock.WithStrictUnlock())
	}
	return opts
}

func WorkerRange(k qlock.Kind) (int, int) {
	Lock.RLock()
	defer Lock.RUnlock()

	return viper.GetInt(MinWorkersKey(k)), viper.GetInt(MaxWorkersKey(k))
}

func ValidateConfig() []string {
	var errorsFound []string

	if rounds := viper.GetInt(KeyTrialRounds); rounds < 1 {
		log.Error().Int(KeyTrialRounds, rounds).Msg("trial.rounds must be positive")
		errorsFound = append(errorsFound, "`trial.rounds` must be at least 1")
	}

	if depth := viper.GetInt(KeyTrialDepth); depth < 0 {
		log.Error().Int(KeyTrialDepth, depth).Msg("trial.depth must not be negative")
		errorsFound = append(errorsFound, "`trial.depth` must not be negative")
	}

	if timeout := viper.GetDuration(KeyTrialTimeout); timeout <= 0 {
		log.Error().Dur(KeyTrialTimeout, timeout).Msg("trial.timeout must be positive")
		errorsFound = append(errorsFound, "`trial.timeout` must be a positive duration")
	}

	if spinYield := viper.GetInt(KeySpinYield); spinYield < 1 {
		log.Error().Int(KeySpinYield, spinYield).Msg("locks.spin_yield must be positive")
		errorsFound = append(errorsFound, "`locks.spin_yield` must be at least 1")
	}

	for _, k := range qlock.Kinds() {
		minWorkers := viper.GetInt(MinWorkersKey(k))
		maxWorkers := viper.GetInt(MaxWorkersKey(k))
		if minWorkers < 1 {
			log.Error().Str("lock", k.String()).Int("min_workers", minWorkers).Msg("min_workers must be positive")
			errorsFound = append(errorsFound, fmt.Sprintf("`%s` must be at least 1", MinWorkersKey(k)))
		}
		if maxWorkers <= minWorkers {
			log.Error().Str("lock", k.String()).Int("min_workers", minWorkers).Int("max_workers", maxWorkers).Msg("max_workers must exceed min_workers")
			errorsFound = append(errorsFound, fmt.Sprintf("`%s` must be greater than `%s`", MaxWorkersKey(k), MinWorkersKey(k)))
		}
	}

	return errorsFound
}

// WriteCurrentConfigState dumps every effective setting as YAML.
func WriteCurrentConfigState(w io.Writer) error {
	Lock.RLock()
	defer Lock.RUnlock()

	everything := viper.AllSettings()

	data, err := yaml.Marshal(everything)
	if err != nil {
		log.Error().Err(err).Msg("could not marshall")
		return fmt.Errorf("config: WriteCurrentConfigState: could not marshal settings: %w", err)
	}

	n, err := w.Write(data)
	if err != nil {
		log.Error().Err(err).Msg("could not write config")
		return fmt.Errorf("config: WriteCurrentConfigState: could not write settings: %w", err)
	}

	log.Debug().Int("bytes_written", n).Msg("wrote config state")

	return nil
}
