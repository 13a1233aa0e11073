package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zalepa/pgcrime/config"
)

// reportManifest indexes the archived reports. Files are listed newest
// first so consumers can take the head as the latest report.
type reportManifest struct {
	Files  []string `json:"files"`
	Latest string   `json:"latest"`
	Count  int      `json:"count"`
}

// Manifest implements the "manifest" subcommand: regenerate manifest.json
// for a JSON archive directory.
func Manifest(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime manifest [directory]\n\n")
		fmt.Fprintf(os.Stderr, "Rebuilds manifest.json for the given JSON archive (default: %s).\n", config.Default().JSONDir())
	}
	fs.Parse(args)

	dir := config.Default().JSONDir()
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	m, err := WriteManifest(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "manifest.json: %d report(s), latest %s\n", m.Count, m.Latest)
}

// listReportFiles returns the dated report files (YYYYMMDD.json) in dir,
// newest first. Other files, manifest.json included, are ignored.
func listReportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if stampPattern.MatchString(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// WriteManifest rebuilds manifest.json in dir from the dated report files
// present there.
func WriteManifest(dir string) (reportManifest, error) {
	files, err := listReportFiles(dir)
	if err != nil {
		return reportManifest{}, err
	}
	if len(files) == 0 {
		return reportManifest{}, fmt.Errorf("no report files found in %s", dir)
	}
	m := reportManifest{
		Files:  files,
		Latest: files[0],
		Count:  len(files),
	}
	if err := writeJSON(filepath.Join(dir, "manifest.json"), m); err != nil {
		return reportManifest{}, err
	}
	return m, nil
}
