package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/joho/godotenv"
)

// envDefaults are the flag defaults read from the environment.
type envDefaults struct {
	RoundTime   time.Duration
	MonitorPort int
	Record      string
	Seed        int64
}

// loadEnvDefaults reads the given .env files, when they exist, and then the
// FIBULA_* variables. Variables already set in the environment win over the
// files.
func loadEnvDefaults(files ...string) (envDefaults, error) {
	d := envDefaults{
		RoundTime: combat.DefaultRoundTime,
		Seed:      1,
	}

	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return d, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if v := os.Getenv("FIBULA_ROUND_TIME"); v != "" {
		roundTime, err := time.ParseDuration(v)
		if err != nil {
			return d, fmt.Errorf("FIBULA_ROUND_TIME: %w", err)
		}

		d.RoundTime = roundTime
	}

	if v := os.Getenv("FIBULA_MONITOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return d, fmt.Errorf("FIBULA_MONITOR_PORT: %w", err)
		}

		d.MonitorPort = port
	}

	if v := os.Getenv("FIBULA_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return d, fmt.Errorf("FIBULA_SEED: %w", err)
		}

		d.Seed = seed
	}

	d.Record = os.Getenv("FIBULA_RECORD")

	return d, nil
}
