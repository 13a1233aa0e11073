package cmd

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalepa/pgcrime/config"
	"github.com/zalepa/pgcrime/parser"
)

// requestHeaders mimic a browser. The county site serves the report PDF only
// to clients that look like one.
var requestHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// Download implements the "download" subcommand: fetch today's report from
// the county site, parse it, store the dated JSON, archive the PDF, and
// refresh the manifest.
func Download(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	url := fs.String("url", "", "PDF URL to download (default: configured source)")
	date := fs.String("date", "", "override report date for output names (YYYY-MM-DD)")
	cfgPath := fs.String("config", "", "YAML settings file")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime download [--url URL] [--date YYYY-MM-DD] [--config file]\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runDownload(cfg, *url, *date, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runDownload is the whole download-and-parse job; the scheduler calls it
// directly.
func runDownload(cfg config.Settings, url, dateOverride string, debug bool) error {
	if url == "" {
		url = cfg.SourceURL
	}

	tmp, err := os.CreateTemp("", "crime_report_*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := fetchPDF(url, tmpPath, cfg); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	p := parser.New(parser.Config{Logger: newLogger(debug)})
	result, err := p.ParseFile(tmpPath)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	date := dateOverride
	if date == "" && result.ReportDate != nil {
		date = *result.ReportDate
	}
	stamp := dateStamp(date)

	// Archive the PDF under its date first so the stored JSON can reference
	// the final filename.
	pdfPath := filepath.Join(cfg.PDFDir(), stamp+".pdf")
	if err := os.MkdirAll(cfg.PDFDir(), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists, keeping existing archive\n", pdfPath)
	} else if err := os.Rename(tmpPath, pdfPath); err != nil {
		// Rename fails across filesystems; fall back to a copy.
		if err := copyFile(tmpPath, pdfPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not archive PDF: %v\n", err)
		}
	}
	result.SourceFile = stamp + ".pdf"

	jsonPath := filepath.Join(cfg.JSONDir(), stamp+".json")
	if err := writeJSON(jsonPath, result); err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	if _, err := WriteManifest(cfg.JSONDir()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: manifest update failed: %v\n", err)
	}

	reportDate := "unknown"
	if result.ReportDate != nil {
		reportDate = *result.ReportDate
	}
	fmt.Fprintf(os.Stderr, "report date:      %s\n", reportDate)
	fmt.Fprintf(os.Stderr, "records:          %d (%d violent, %d property)\n",
		len(result.CrimeStatistics),
		result.Summary.ViolentCrimeCount,
		result.Summary.PropertyCrimeCount)
	fmt.Fprintf(os.Stderr, "parse errors:     %d\n", len(result.ParseErrors))
	for _, e := range result.ParseErrors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
	fmt.Fprintf(os.Stderr, "output json:      %s\n", jsonPath)
	fmt.Fprintf(os.Stderr, "archived pdf:     %s\n", pdfPath)
	return nil
}

// fetchPDF downloads url to dest with bounded retries.
func fetchPDF(url, dest string, cfg config.Settings) error {
	client := &http.Client{Timeout: cfg.RequestTimeout()}
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		fmt.Fprintf(os.Stderr, "downloading %s (attempt %d/%d)\n", url, attempt, cfg.MaxRetries)
		if lastErr = fetchOnce(client, url, dest); lastErr == nil {
			return nil
		}
		fmt.Fprintf(os.Stderr, "attempt %d failed: %v\n", attempt, lastErr)
		if attempt < cfg.MaxRetries {
			fmt.Fprintf(os.Stderr, "retrying in %s\n", cfg.RetryDelay())
			time.Sleep(cfg.RetryDelay())
		}
	}
	return fmt.Errorf("after %d attempts: %w", cfg.MaxRetries, lastErr)
}

func fetchOnce(client *http.Client, url, dest string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "pdf") && !strings.Contains(ct, "application/octet-stream") {
		fmt.Fprintf(os.Stderr, "warning: content type %q may not be a PDF\n", ct)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "downloaded %d bytes\n", n)
	return nil
}

// dateStamp turns a YYYY-MM-DD report date into the YYYYMMDD archive stamp,
// falling back to today when the date is missing or malformed.
func dateStamp(date string) string {
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			return t.Format("20060102")
		}
		fmt.Fprintf(os.Stderr, "invalid date %q, using today's date\n", date)
	}
	return time.Now().Format("20060102")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
