package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/zalepa/pgcrime/config"
)

// trendSeries carries the per-report crime counts aligned by date,
// oldest first.
type trendSeries struct {
	Dates    []string `json:"dates"`
	Violent  []int    `json:"violent"`
	Property []int    `json:"property"`
	Total    []int    `json:"total"`
}

// Viz implements the "viz" subcommand: chart violent and property crime
// counts across the archived reports.
func Viz(args []string) {
	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	dir := fs.String("dir", "", "directory containing archived JSON reports")
	out := fs.String("o", "crime-trends.png", "output PNG file path")
	term := fs.Bool("term", false, "render sparklines to the terminal instead of a PNG")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pgcrime viz [dir] [flags]

Visualize crime counts over time from the archived reports.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pgcrime viz
  pgcrime viz data/json -o trends.png
  pgcrime viz --term
`)
	}
	// Reorder args so the positional dir argument can appear anywhere.
	// Go's flag package stops parsing at the first non-flag argument.
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
		fmt.Fprintf(os.Stderr, "no report files found in %s\n", *dir)
		os.Exit(1)
	}

	series := buildSeries(reports)

	if *term {
		renderTerminal(series)
		return
	}
	if err := renderTrendChart(*out, series); err != nil {
		fmt.Fprintf(os.Stderr, "error writing chart: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

// buildSeries collapses the archived reports into date-aligned count series.
func buildSeries(reports []archivedReport) trendSeries {
	s := trendSeries{
		Dates:    make([]string, 0, len(reports)),
		Violent:  make([]int, 0, len(reports)),
		Property: make([]int, 0, len(reports)),
		Total:    make([]int, 0, len(reports)),
	}
	for _, r := range reports {
		s.Dates = append(s.Dates, r.date)
		s.Violent = append(s.Violent, r.result.Summary.ViolentCrimeCount)
		s.Property = append(s.Property, r.result.Summary.PropertyCrimeCount)
		s.Total = append(s.Total, r.result.Summary.TotalOffenseTypes)
	}
	return s
}

// renderTrendChart plots the violent and property series as a PNG line chart.
func renderTrendChart(path string, s trendSeries) error {
	p := plot.New()
	p.Title.Text = "Crime Incidents by Report Date"
	p.X.Label.Text = "Report Date"
	p.Y.Label.Text = "Offense Types"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	violent, err := timePoints(s.Dates, s.Violent)
	if err != nil {
		return err
	}
	property, err := timePoints(s.Dates, s.Property)
	if err != nil {
		return err
	}

	vLine, vPoints, err := plotter.NewLinePoints(violent)
	if err != nil {
		return err
	}
	vLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	vPoints.Color = vLine.Color

	pLine, pPoints, err := plotter.NewLinePoints(property)
	if err != nil {
		return err
	}
	pLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pPoints.Color = pLine.Color

	p.Add(vLine, vPoints, pLine, pPoints)
	p.Legend.Add("Violent", vLine)
	p.Legend.Add("Property", pLine)
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

func timePoints(dates []string, counts []int) (plotter.XYs, error) {
	pts := make(plotter.XYs, len(dates))
	for i, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("bad report date %q: %w", d, err)
		}
		pts[i].X = float64(t.Unix())
		pts[i].Y = float64(counts[i])
	}
	return pts, nil
}

// renderTerminal prints the series as sparkline rows.
func renderTerminal(s trendSeries) {
	if len(s.Dates) == 0 {
		fmt.Println("(no data)")
		return
	}
	fmt.Printf("Crime trends: %s to %s (%d reports)\n\n", s.Dates[0], s.Dates[len(s.Dates)-1], len(s.Dates))

	rows := []struct {
		name   string
		counts []int
	}{
		{"Violent", s.Violent},
		{"Property", s.Property},
		{"Total", s.Total},
	}
	for _, row := range rows {
		vals := make([]float64, len(row.counts))
		for i, c := range row.counts {
			vals[i] = float64(c)
		}
		latest := row.counts[len(row.counts)-1]
		fmt.Printf("%-10s %6d   %s\n", row.name, latest, sparkline(vals))
	}
}

// sparkline renders values as unicode block characters, one per value.
func sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return strings.Repeat(" ", len(values))
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		idx := n / 2
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}
