// Package config holds the runtime settings shared by the pgcrime
// subcommands. Settings load from an optional YAML file; anything not set
// there keeps its default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings drives the download, schedule, and archive subcommands.
type Settings struct {
	SourceURL         string `yaml:"source_url"`
	DataDir           string `yaml:"data_dir"`
	DailyRunTime      string `yaml:"daily_run_time"` // HH:MM wall-clock
	Timezone          string `yaml:"timezone"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySec     int    `yaml:"retry_delay_seconds"`
	RequestTimeoutSec int    `yaml:"request_timeout_seconds"`
}

// Default returns the production settings for the county's daily report.
func Default() Settings {
	return Settings{
		SourceURL:         "https://dailycrime.princegeorgescountymd.gov/",
		DataDir:           "data",
		DailyRunTime:      "06:00",
		Timezone:          "America/New_York",
		MaxRetries:        3,
		RetryDelaySec:     60,
		RequestTimeoutSec: 30,
	}
}

// Load reads a YAML settings file over the defaults. An empty path or a
// missing file returns the defaults unchanged.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) JSONDir() string { return filepath.Join(s.DataDir, "json") }
func (s Settings) CSVDir() string  { return filepath.Join(s.DataDir, "csv") }
func (s Settings) PDFDir() string  { return filepath.Join(s.DataDir, "pdf") }

func (s Settings) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelaySec) * time.Second
}

func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}
