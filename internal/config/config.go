package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blastyard/arena-server/internal/arena"
)

// Config is everything the server reads from the environment, validated up
// front: a bad value aborts startup rather than running a round with
// undefined timing or geometry.
type Config struct {
	Addr        string
	Teams       []string
	DatabaseURL string

	Intermission time.Duration
	RoundTime    time.Duration
	Tick         time.Duration
	SettleDelay  time.Duration
	ReadDelay    time.Duration
	CleanupDelay time.Duration
	RespawnDelay time.Duration

	WinnerReward int
	LoserReward  int

	HazardRate int
	HazardBase int
	HazardCap  int

	Field       arena.Region
	Ceiling     arena.Region
	SpawnMargin float64
}

func Load() (*Config, error) {
	var firstErr error
	intv := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return n
	}
	floatv := func(key string, def float64) float64 {
		f, err := envFloat(key, def)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return f
	}

	c := &Config{
		Addr:        envStr("ADDR", ":8080"),
		Teams:       strings.Split(envStr("TEAMS", "red,yellow,green,blue"), ","),
		DatabaseURL: envStr("DATABASE_URL", ""),

		Intermission: time.Duration(intv("INTERMISSION_SECONDS", 15)) * time.Second,
		RoundTime:    time.Duration(intv("ROUND_SECONDS", 60)) * time.Second,
		Tick:         time.Duration(intv("TICK_MS", 1000)) * time.Millisecond,
		SettleDelay:  time.Duration(intv("SETTLE_MS", 1000)) * time.Millisecond,
		ReadDelay:    time.Duration(intv("READ_DELAY_SECONDS", 5)) * time.Second,
		CleanupDelay: time.Duration(intv("CLEANUP_DELAY_SECONDS", 2)) * time.Second,
		RespawnDelay: time.Duration(intv("RESPAWN_SECONDS", 3)) * time.Second,

		WinnerReward: intv("WINNER_REWARD", 25),
		LoserReward:  intv("LOSER_REWARD", 5),

		HazardRate: intv("HAZARD_RATE", 16),
		HazardBase: intv("HAZARD_BASE", 10),
		HazardCap:  intv("HAZARD_CAP", 250),

		SpawnMargin: floatv("SPAWN_MARGIN", 16),
	}
	if firstErr != nil {
		return nil, firstErr
	}

	var err error
	if c.Field.Min, err = envVec3("FIELD_MIN", arena.Vec3{X: -256, Y: 0, Z: -256}); err != nil {
		return nil, err
	}
	if c.Field.Max, err = envVec3("FIELD_MAX", arena.Vec3{X: 256, Y: 64, Z: 256}); err != nil {
		return nil, err
	}
	if c.Ceiling.Min, err = envVec3("CEILING_MIN", arena.Vec3{X: -256, Y: 512, Z: -256}); err != nil {
		return nil, err
	}
	if c.Ceiling.Max, err = envVec3("CEILING_MAX", arena.Vec3{X: 256, Y: 520, Z: 256}); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Intermission <= 0 || c.RoundTime <= 0 || c.Tick <= 0 {
		return fmt.Errorf("phase durations must be positive")
	}
	if c.WinnerReward <= c.LoserReward {
		return fmt.Errorf("WINNER_REWARD (%d) must exceed LOSER_REWARD (%d)", c.WinnerReward, c.LoserReward)
	}
	if c.LoserReward < 0 {
		return fmt.Errorf("LOSER_REWARD must not be negative")
	}
	if c.HazardRate <= 0 || c.HazardCap <= 0 || c.HazardBase < 0 {
		return fmt.Errorf("hazard plan constants out of range: rate=%d base=%d cap=%d", c.HazardRate, c.HazardBase, c.HazardCap)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: bad integer %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad number %q: %w", key, v, err)
	}
	return f, nil
}

// envVec3 parses "x,y,z".
func envVec3(key string, def arena.Vec3) (arena.Vec3, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return arena.Vec3{}, fmt.Errorf("%s: want x,y,z, got %q", key, v)
	}
	var out [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return arena.Vec3{}, fmt.Errorf("%s: bad component %q: %w", key, p, err)
		}
		out[i] = f
	}
	return arena.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
