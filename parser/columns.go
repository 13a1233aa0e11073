package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical field names produced by the normalizer's fixed rules.
const (
	FieldOffenseType   = "offense_type"
	FieldSevenDayTotal = "seven_day_total"
	FieldPrevSevenDay  = "prev_seven_day_total"
	FieldChange        = "change"
	FieldPercentChange = "percent_change"
)

var (
	weekdayDatePattern = regexp.MustCompile(`(?i)(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+(\d{1,2})/(\d{1,2})`)
	ytdPattern         = regexp.MustCompile(`ytd\s+(\d{2})\b`)
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nonWordPattern     = regexp.MustCompile(`[^\w\s-]`)
	separatorPattern   = regexp.MustCompile(`[-\s]+`)
)

// fixedColumns maps exact header labels (lowercased, trimmed) to their
// canonical names.
var fixedColumns = map[string]string{
	"7-day totals": FieldSevenDayTotal,
	"+/-":          FieldChange,
	"% change":     FieldPercentChange,
}

// Normalizer rewrites raw table-header labels into canonical field names
// using the reference year to resolve month/day-only date labels.
type Normalizer struct {
	Year   int
	Logger *slog.Logger
}

// columnRule attempts one rewrite. ok is false when the rule does not apply
// and the next rule in order should be consulted.
type columnRule func(n *Normalizer, label string) (name string, ok bool)

// columnRules are evaluated in order; the first that applies wins. The
// ordering matters: a "Monday 2/2" label must become an ISO date before the
// generic rule gets a chance to mangle the slash.
var columnRules = []columnRule{
	weekdayDateRule,
	prevSevenRule,
	ytdRule,
	fixedRule,
	isoPassthroughRule,
}

// Normalize maps a raw header label to its canonical field name. The output
// is idempotent: feeding a canonical name back in returns it unchanged.
func (n *Normalizer) Normalize(label string) string {
	for _, rule := range columnRules {
		if name, ok := rule(n, label); ok {
			return name
		}
	}
	return genericName(label)
}

// weekdayDateRule rewrites "DayOfWeek M/D" labels to YYYY-MM-DD using the
// reference year. A month/day pair that doesn't exist in that year logs a
// warning and declines, so the label falls through to the generic rule.
func weekdayDateRule(n *Normalizer, label string) (string, bool) {
	m := weekdayDatePattern.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	d := time.Date(n.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2), so a round-trip
	// mismatch means the label names a day that doesn't exist.
	if int(d.Month()) != month || d.Day() != day {
		n.Logger.Warn("invalid date in column name", "column", label, "year", n.Year)
		return "", false
	}
	return d.Format("2006-01-02"), true
}

// prevSevenRule collapses every "Prev. 7 ..." label to one identifier no
// matter which date range follows the prefix.
func prevSevenRule(_ *Normalizer, label string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(label)), "prev. 7") {
		return FieldPrevSevenDay, true
	}
	return "", false
}

// ytdRule expands "YTD 26 ..." labels to ytd_2026.
func ytdRule(_ *Normalizer, label string) (string, bool) {
	m := ytdPattern.FindStringSubmatch(strings.ToLower(label))
	if m == nil {
		return "", false
	}
	return "ytd_20" + m[1], true
}

func fixedRule(_ *Normalizer, label string) (string, bool) {
	name, ok := fixedColumns[strings.ToLower(strings.TrimSpace(label))]
	return name, ok
}

// isoPassthroughRule keeps already-canonical ISO date names intact; without
// it the generic rule would turn their hyphens into underscores.
func isoPassthroughRule(_ *Normalizer, label string) (string, bool) {
	s := strings.TrimSpace(label)
	if isoDatePattern.MatchString(s) {
		return s, true
	}
	return "", false
}

// genericName is the fallback: lowercase, trim, strip everything except word
// characters, whitespace, and hyphens, then collapse whitespace and hyphen
// runs into single underscores.
func genericName(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = nonWordPattern.ReplaceAllString(s, "")
	s = separatorPattern.ReplaceAllString(s, "_")
	return s
}
