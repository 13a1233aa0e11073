package parser

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

// captureHandler counts the records logged through it, for asserting on
// normalizer warnings.
type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalize(t *testing.T) {
	n := &Normalizer{Year: 2026, Logger: discardLogger()}

	tests := []struct {
		label string
		want  string
	}{
		{"Monday 2/2", "2026-02-02"},
		{"SUNDAY 2/8", "2026-02-08"},
		{"Tuesday 12/30", "2026-12-30"},
		{"Prev. 7 Day Total", "prev_seven_day_total"},
		{"prev. 7 (1/26 - 2/1)", "prev_seven_day_total"},
		{"YTD 26", "ytd_2026"},
		{"ytd 25 total", "ytd_2025"},
		{"7-Day Totals", "seven_day_total"},
		{"+/-", "change"},
		{"% Change", "percent_change"},
		{"Offense Type", "offense_type"},
		{"  Incident   Count  ", "incident_count"},
		{"Auto-Theft (Rate)", "auto_theft_rate"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.label); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := &Normalizer{Year: 2026, Logger: discardLogger()}

	labels := []string{
		"Monday 2/2", "Prev. 7 Day Total", "YTD 26", "7-Day Totals",
		"+/-", "% Change", "Offense Type",
	}
	for _, label := range labels {
		once := n.Normalize(label)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize(%q) = %q, but Normalize(%q) = %q", label, once, once, twice)
		}
	}
}

func TestNormalizeInvalidDateWarnsAndFallsThrough(t *testing.T) {
	h := &captureHandler{}
	n := &Normalizer{Year: 2026, Logger: slog.New(h)}

	got := n.Normalize("Monday 2/30")
	if got != "monday_230" {
		t.Errorf("Normalize(%q) = %q, want monday_230", "Monday 2/30", got)
	}

	warns := 0
	for _, r := range h.records {
		if r.Level == slog.LevelWarn {
			warns++
		}
	}
	if warns != 1 {
		t.Errorf("got %d warnings, want 1", warns)
	}
}
