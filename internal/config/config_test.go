package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-assistant/internal/units"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLocation.Name != "Berlin" || cfg.DefaultLocation.Latitude != 52.52 || cfg.DefaultLocation.Longitude != 13.41 {
		t.Fatalf("unexpected default location %+v", cfg.DefaultLocation)
	}
	if cfg.DefaultUnit != units.Metric || cfg.RefreshInterval != 15*time.Minute || cfg.SearchResultCount != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `default_location:
  name: Lagos
  country: Nigeria
  coordinates: [6.45, 3.39]
unit: imperial
search_result_count: 3
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SEARCH_RESULT_COUNT", "7")
	t.Setenv("CHAT_REPLY_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLocation.DisplayName() != "Lagos, Nigeria" || cfg.DefaultLocation.Latitude != 6.45 {
		t.Fatalf("file overlay not applied: %+v", cfg.DefaultLocation)
	}
	if cfg.DefaultUnit != units.Imperial {
		t.Fatalf("expected imperial, got %s", cfg.DefaultUnit)
	}
	if cfg.SearchResultCount != 7 || cfg.ChatReplyTimeout != 5*time.Second {
		t.Fatalf("env should win over file, got count=%d timeout=%s", cfg.SearchResultCount, cfg.ChatReplyTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_LOCATION_LAT": "123",
		"DEFAULT_UNIT":         "kelvin",
		"REFRESH_INTERVAL":     "soon",
		"SEARCH_RESULT_COUNT":  "50",
		"DEFAULT_LOCATION_LON": "east",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
