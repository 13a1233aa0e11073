package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// datePatterns are tried in order against the page-one header text, most
// specific first. The first pattern whose capture also parses wins; a capture
// that fails to parse falls through to the next pattern rather than aborting.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\w+,\s+\w+\s+\d{1,2},\s+\d{4})`), // Sunday, February 8, 2026
	regexp.MustCompile(`(?i)(\w+\s+\d{1,2},\s+\d{4})`),        // February 8, 2026
	regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})`),         // 02/08/2026
	regexp.MustCompile(`(?i)Date:\s*(\d{1,2}/\d{1,2}/\d{4})`),
}

// ExtractHeaderDate scans report header text for the report date. It returns
// the date in YYYY-MM-DD form together with the text that matched. found is
// false when no pattern matched or nothing captured was parseable.
func ExtractHeaderDate(text string) (iso, matched string, found bool) {
	for _, pat := range datePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		t, err := parseLooseDate(m[1])
		if err != nil {
			continue
		}
		return t.Format("2006-01-02"), m[1], true
	}
	return "", "", false
}

// parseLooseDate parses a natural-language date string. dateparse rejects
// some spelled-out weekday prefixes, so when the full string fails the part
// after the first comma is tried on its own.
func parseLooseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err == nil {
		return t, nil
	}
	if i := strings.Index(s, ","); i >= 0 {
		rest := strings.TrimSpace(s[i+1:])
		// A bare year remnant would parse, but it is not a date.
		if strings.ContainsRune(rest, ' ') {
			if t, err2 := dateparse.ParseAny(rest); err2 == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, err
}
