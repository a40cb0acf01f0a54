package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Address() != "127.0.0.1:8050" {
		t.Errorf("Address() = %q, want 127.0.0.1:8050", cfg.Address())
	}
	if !cfg.Server.Debug {
		t.Error("debug should default to on")
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("debug mode should force debug logging, got %q", cfg.Logger.Level)
	}
	if cfg.Dataset.Path != "SoSafeHistoryCleaned.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if !cfg.Dashboard.MinDate.Equal(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MinDate = %v", cfg.Dashboard.MinDate)
	}
	if !cfg.Dashboard.InitialEnd.Equal(time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("InitialEnd = %v", cfg.Dashboard.InitialEnd)
	}
	if cfg.Dashboard.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Dashboard.PageSize)
	}
	if !slices.Contains(cfg.Dashboard.HiddenColumns, "GuestTags") || len(cfg.Dashboard.HiddenColumns) != 7 {
		t.Errorf("HiddenColumns = %v", cfg.Dashboard.HiddenColumns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_DEBUG", "false")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATASET_PATH", "/data/visits.xlsx")
	t.Setenv("DASHBOARD_PAGE_SIZE", "25")
	t.Setenv("DASHBOARD_MAX_DATE", "2022-06-30")
	t.Setenv("DASHBOARD_HIDDEN_COLUMNS", "GuestTags, DaysPassed")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.Debug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("Logger.Level = %q, want warn", cfg.Logger.Level)
	}
	if cfg.Dataset.Path != "/data/visits.xlsx" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Dashboard.PageSize != 25 {
		t.Errorf("PageSize = %d", cfg.Dashboard.PageSize)
	}
	if !cfg.Dashboard.MaxDate.Equal(time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MaxDate = %v", cfg.Dashboard.MaxDate)
	}
	if !slices.Equal(cfg.Dashboard.HiddenColumns, []string{"GuestTags", "DaysPassed"}) {
		t.Errorf("HiddenColumns = %v", cfg.Dashboard.HiddenColumns)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port", map[string]string{"SERVER_PORT": "70000"}, "server port"},
		{"log level", map[string]string{"SERVER_DEBUG": "false", "LOG_LEVEL": "loud"}, "invalid log level"},
		{"page size", map[string]string{"DASHBOARD_PAGE_SIZE": "0"}, "page size"},
		{"date order", map[string]string{"DASHBOARD_MIN_DATE": "2023-01-01"}, "before min date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if cfg.Server.Debug {
		t.Error("Default() should have debug off")
	}

	cfg.Dashboard.HiddenColumns[0] = "changed"
	if Default().Dashboard.HiddenColumns[0] == "changed" {
		t.Error("Default() should not share the hidden column slice")
	}
}
