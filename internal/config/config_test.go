package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Timer.RunningTick != time.Second || cfg.Timer.IdleTick != time.Minute {
		t.Fatalf("unexpected tick defaults: %+v", cfg.Timer)
	}
	if cfg.WeekStart() != time.Monday {
		t.Fatalf("expected Monday week start, got %s", cfg.WeekStart())
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Calendar.UpcomingLimit != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	body := `
server:
  addr: ":8080"
storage:
  driver: sqlite
  path: data/tasks.db
timer:
  running_tick: 2s
  idle_tick: 30s
calendar:
  week_start: 0
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKFLOW_ADDR", ":9090")
	t.Setenv("TASKFLOW_IDLE_TICK", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("env should override file addr, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Path != "data/tasks.db" || cfg.Timer.RunningTick != 2*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Timer.IdleTick != 45*time.Second {
		t.Fatalf("unexpected idle tick: %s", cfg.Timer.IdleTick)
	}
	if cfg.WeekStart() != time.Sunday {
		t.Fatalf("expected Sunday week start, got %s", cfg.WeekStart())
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v %v", level, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKFLOW_DB_DRIVER", "POSTGRES")
	t.Setenv("TASKFLOW_DB_DSN", "postgres://localhost/taskflow")
	t.Setenv("TASKFLOW_RUNNING_TICK", "500ms")
	t.Setenv("TASKFLOW_WEEK_START", "6")
	t.Setenv("TASKFLOW_SCHEDULER_BUFFER", "128")
	t.Setenv("TASKFLOW_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverPostgres || cfg.Storage.DSN == "" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Timer.RunningTick != 500*time.Millisecond || cfg.Scheduler.Buffer != 128 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.WeekStart() != time.Saturday {
		t.Fatalf("unexpected week start: %s", cfg.WeekStart())
	}
}

func TestInvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("TASKFLOW_RUNNING_TICK", "fast")
	t.Setenv("TASKFLOW_SCHEDULER_BUFFER", "-3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timer.RunningTick != time.Second || cfg.Scheduler.Buffer != 64 {
		t.Fatalf("invalid env should keep defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":      func(c *Config) { c.Storage.Driver = "mongo" },
		"sqlite path": func(c *Config) { c.Storage.Path = "" },
		"pg dsn":      func(c *Config) { c.Storage.Driver = DriverPostgres },
		"tick order":  func(c *Config) { c.Timer.IdleTick = time.Millisecond },
		"week start":  func(c *Config) { c.Calendar.WeekStart = 7 },
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"addr":        func(c *Config) { c.Server.Addr = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
