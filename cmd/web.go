package cmd

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/zalepa/pgcrime/config"
)

//go:embed web.html
var htmlContent embed.FS

// Web implements the "web" subcommand: serve a small dashboard over the
// archived reports.
func Web(args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	dir := fs.String("dir", "", "directory containing archived JSON reports")
	port := fs.String("port", "8080", "HTTP server port")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime web [dir] [--port 8080]\n\nStart an interactive web dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*dir = fs.Arg(0)
	}
	if *dir == "" {
		*dir = config.Default().JSONDir()
	}

	reports, err := loadReports(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading data: %v\n", err)
		os.Exit(1)
	}
	if len(reports) == 0 {
		fmt.Fprintf(os.Stderr, "warning: no report files found in %s, starting with empty data\n", *dir)
	}

	byDate := make(map[string]archivedReport, len(reports))
	for _, r := range reports {
		byDate[r.date] = r
	}
	series := buildSeries(reports)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		data, _ := htmlContent.ReadFile("web.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	http.HandleFunc("/api/manifest", func(w http.ResponseWriter, r *http.Request) {
		files := make([]string, 0, len(reports))
		for i := len(reports) - 1; i >= 0; i-- {
			files = append(files, reports[i].date)
		}
		m := reportManifest{Files: files, Count: len(files)}
		if len(files) > 0 {
			m.Latest = files[0]
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m)
	})

	http.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" && len(reports) > 0 {
			date = reports[len(reports)-1].date
		}
		rep, ok := byDate[date]
		if !ok {
			http.Error(w, fmt.Sprintf("no report for %s", date), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep.result)
	})

	http.HandleFunc("/api/series", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(series)
	})

	addr := ":" + *port
	fmt.Printf("serving on http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
