package daemon

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8765 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8765)
	}
	if cfg.Quota.DailyBase != 5 {
		t.Errorf("Quota.DailyBase = %d, want 5", cfg.Quota.DailyBase)
	}
	if cfg.Points.PerSolve != 10 {
		t.Errorf("Points.PerSolve = %d, want 10", cfg.Points.PerSolve)
	}
	if cfg.Reminders.Hour != "19:00" {
		t.Errorf("Reminders.Hour = %q, want 19:00", cfg.Reminders.Hour)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[quota]
daily_base = 3

[clock]
timezone = "Asia/Tokyo"

[reminders]
hour = "18:30"

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if cfg.Quota.DailyBase != 3 {
		t.Errorf("DailyBase = %d, want 3", cfg.Quota.DailyBase)
	}
	if cfg.Points.PerSolve != 10 {
		t.Errorf("PerSolve = %d, want default 10", cfg.Points.PerSolve)
	}
	if cfg.Reminders.Hour != "18:30" || cfg.Reminders.QuietStart != "22:00" {
		t.Errorf("Reminders = %+v", cfg.Reminders)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Tokyo" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":   "[quota\ndaily_base = 3",
		"negative": "[quota]\ndaily_base = -1",
		"timezone": "[clock]\ntimezone = \"Mars/Olympus\"",
		"hour":     "[reminders]\nhour = \"7pm\"",
		"port":     "[api]\nport = 70000",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(content), 0600)
			if _, err := LoadConfigFrom(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("SNAPSOLVE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Quota.DailyBase = 7
	cfg.Clock.Timezone = "UTC"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestHome_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SNAPSOLVE_HOME", dir)
	if Home() != dir {
		t.Errorf("Home() = %q, want %q", Home(), dir)
	}
}

func TestNewLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("not JSON: %q", out)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	NewLogger(LoggingConfig{Level: "bogus"}, &buf).Info("text record")
	if !strings.Contains(buf.String(), "msg=\"text record\"") {
		t.Errorf("text handler output = %q", buf.String())
	}
}
