package cmd

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zalepa/pgcrime/config"
	"github.com/zalepa/pgcrime/parser"
)

// Export implements the "export" subcommand: flatten archived JSON reports
// into CSV rows for spreadsheet analysis. One row per offense record, with
// the report-level metadata repeated on each row.
func Export(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	all := fs.Bool("all", false, "convert every JSON file in the input directory")
	combined := fs.Bool("combined", false, "merge every JSON file into a single CSV")
	out := fs.String("o", "", "output CSV file or directory")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime export [input.json | directory] [--all] [--combined] [-o output]\n\n")
		fmt.Fprintf(os.Stderr, "Without arguments, converts every report in the default JSON archive.\n\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	cfg := config.Default()
	input := cfg.JSONDir()
	if fs.NArg() > 0 {
		input = fs.Arg(0)
	}

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *combined:
		dir := input
		if !info.IsDir() {
			dir = filepath.Dir(input)
		}
		outPath := *out
		if outPath == "" {
			outPath = filepath.Join(cfg.CSVDir(), "combined.csv")
		}
		if err := exportCombined(dir, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)

	case *all || info.IsDir():
		outDir := *out
		if outDir == "" {
			outDir = cfg.CSVDir()
		}
		n, err := exportAll(input, outDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "converted %d file(s) into %s\n", n, outDir)

	default:
		outPath := *out
		if outPath == "" {
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			outPath = filepath.Join(cfg.CSVDir(), base+".csv")
		}
		if err := exportFile(input, outPath, false); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	}
}

// exportFile converts one report JSON to CSV.
func exportFile(jsonPath, csvPath string, withSource bool) error {
	res, err := readResult(jsonPath)
	if err != nil {
		return err
	}
	source := ""
	if withSource {
		source = filepath.Base(jsonPath)
	}
	rows := flattenReport(res, source)
	if len(rows) == 0 {
		return fmt.Errorf("no crime statistics in %s", jsonPath)
	}
	return writeCSV(csvPath, rows, priorityFields(withSource))
}

// exportAll converts every dated report in jsonDir to its own CSV in csvDir.
func exportAll(jsonDir, csvDir string) (int, error) {
	files, err := listReportFiles(jsonDir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no report files found in %s", jsonDir)
	}

	converted := 0
	for _, name := range files {
		jsonPath := filepath.Join(jsonDir, name)
		csvPath := filepath.Join(csvDir, strings.TrimSuffix(name, ".json")+".csv")
		if err := exportFile(jsonPath, csvPath, false); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			continue
		}
		converted++
	}
	return converted, nil
}

// exportCombined merges every dated report in jsonDir into one CSV, tagging
// each row with its source file.
func exportCombined(jsonDir, outPath string) error {
	files, err := listReportFiles(jsonDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no report files found in %s", jsonDir)
	}

	// Oldest first so the combined rows read chronologically.
	sort.Strings(files)

	var rows []map[string]any
	for _, name := range files {
		res, err := readResult(filepath.Join(jsonDir, name))
		if err != nil {
			return err
		}
		rows = append(rows, flattenReport(res, name)...)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no crime statistics found in %s", jsonDir)
	}
	return writeCSV(outPath, rows, priorityFields(true))
}

func priorityFields(withSource bool) []string {
	if withSource {
		return []string{"report_date", "offense_type", "source_file"}
	}
	return []string{"report_date", "offense_type"}
}

func readResult(path string) (parser.Result, error) {
	var res parser.Result
	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// flattenReport turns each record into one flat CSV row carrying the
// report-level metadata columns. sourceName is added as a source_file
// column when non-empty.
func flattenReport(res parser.Result, sourceName string) []map[string]any {
	rows := make([]map[string]any, 0, len(res.CrimeStatistics))
	for _, rec := range res.CrimeStatistics {
		row := map[string]any{}
		if res.ReportDate != nil {
			row["report_date"] = *res.ReportDate
		} else {
			row["report_date"] = ""
		}
		if res.ExtractedDateText != nil {
			row["extracted_date_text"] = *res.ExtractedDateText
		}
		if sourceName != "" {
			row["source_file"] = sourceName
		}
		for k, v := range rec {
			flattenInto(row, k, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// flattenInto copies value into dst under key, expanding nested maps with
// dotted keys and joining lists into comma-separated strings.
func flattenInto(dst map[string]any, key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for k, sub := range v {
			flattenInto(dst, key+"."+k, sub)
		}
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		dst[key] = strings.Join(parts, ", ")
	default:
		dst[key] = value
	}
}

// writeCSV writes the rows under a header built from the union of all row
// keys, sorted, with the priority fields pulled to the front.
func writeCSV(path string, rows []map[string]any, priority []string) error {
	fieldSet := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			fieldSet[k] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	fields = frontload(fields, priority)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(fields); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, len(fields))
		for i, field := range fields {
			line[i] = formatCSVValue(row[field])
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	return w.Error()
}

// frontload moves the priority fields to the front of the sorted field list,
// keeping their given order.
func frontload(fields, priority []string) []string {
	for i := len(priority) - 1; i >= 0; i-- {
		p := priority[i]
		for j, f := range fields {
			if f == p {
				fields = append(fields[:j], fields[j+1:]...)
				fields = append([]string{p}, fields...)
				break
			}
		}
	}
	return fields
}

func formatCSVValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
