package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/zalepa/pgcrime/parser"
)

// stampPattern matches the dated archive filenames (YYYYMMDD.json) and
// captures the date parts. manifest.json and strays never match.
var stampPattern = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})\.json$`)

// archivedReport is one dated JSON result loaded back from the archive.
type archivedReport struct {
	date   string // YYYY-MM-DD, derived from the filename
	result parser.Result
}

// loadReports reads every dated JSON file in dir, oldest first.
func loadReports(dir string) ([]archivedReport, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var reports []archivedReport
	for _, path := range matches {
		m := stampPattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var res parser.Result
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		reports = append(reports, archivedReport{
			date:   m[1] + "-" + m[2] + "-" + m[3],
			result: res,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].date < reports[j].date
	})
	return reports, nil
}

// writeJSON marshals v with indentation and writes it to path, creating the
// parent directory when needed.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// newLogger builds the text logger handed to the parser core.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// reorderArgs moves positional arguments to the end so that Go's flag package
// can parse all flags regardless of where a positional argument appears.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			// Consume the next arg as the flag's value unless it looks like a flag itself.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !strings.Contains(args[i], "=") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
