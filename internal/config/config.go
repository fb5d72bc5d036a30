// Package config loads taskflow settings from an optional YAML file and
// TASKFLOW_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Timer     TimerConfig     `yaml:"timer"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// TimerConfig sets how often the terminal client resamples the clock.
type TimerConfig struct {
	RunningTick time.Duration `yaml:"running_tick"`
	IdleTick    time.Duration `yaml:"idle_tick"`
}

type CalendarConfig struct {
	// WeekStart is the first column of the month grid, 0 = Sunday.
	WeekStart     int `yaml:"week_start"`
	UpcomingLimit int `yaml:"upcoming_limit"`
}

type SchedulerConfig struct {
	Buffer int `yaml:"buffer"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":5000"},
		Storage:   StorageConfig{Driver: DriverSQLite, Path: "taskflow.db"},
		Timer:     TimerConfig{RunningTick: time.Second, IdleTick: time.Minute},
		Calendar:  CalendarConfig{WeekStart: int(time.Monday), UpcomingLimit: 5},
		Scheduler: SchedulerConfig{Buffer: 64},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v, ok := getEnvString("TASKFLOW_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvString("TASKFLOW_DB_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvString("TASKFLOW_DB_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := getEnvString("TASKFLOW_DB_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvDuration("TASKFLOW_RUNNING_TICK"); ok && v > 0 {
		c.Timer.RunningTick = v
	}
	if v, ok := getEnvDuration("TASKFLOW_IDLE_TICK"); ok && v > 0 {
		c.Timer.IdleTick = v
	}
	if v, ok := getEnvInt("TASKFLOW_WEEK_START"); ok {
		c.Calendar.WeekStart = v
	}
	if v, ok := getEnvInt("TASKFLOW_SCHEDULER_BUFFER"); ok && v > 0 {
		c.Scheduler.Buffer = v
	}
	if v, ok := getEnvString("TASKFLOW_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Storage.Driver)
	}
	if c.Timer.RunningTick <= 0 || c.Timer.IdleTick <= 0 {
		return fmt.Errorf("timer ticks must be positive")
	}
	if c.Timer.IdleTick < c.Timer.RunningTick {
		return fmt.Errorf("timer.idle_tick must not be shorter than timer.running_tick")
	}
	if c.Calendar.WeekStart < 0 || c.Calendar.WeekStart > 6 {
		return fmt.Errorf("calendar.week_start must be between 0 and 6")
	}
	if c.Calendar.UpcomingLimit < 0 {
		return fmt.Errorf("calendar.upcoming_limit must not be negative")
	}
	if c.Scheduler.Buffer <= 0 {
		return fmt.Errorf("scheduler.buffer must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) WeekStart() time.Weekday {
	return time.Weekday(c.Calendar.WeekStart)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
