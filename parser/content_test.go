package parser

import (
	"reflect"
	"testing"
)

func nonEmptyItems(items []string) []string {
	var out []string
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestExtractTextItemsTJKerning(t *testing.T) {
	// (8)0(8) concatenates to "88"; the -4704.6 displacement splits a cell.
	stream := []byte(`BT
[(8)0(8)-4704.6(2)0(3)]TJ
ET`)

	got := nonEmptyItems(extractTextItems(stream))
	want := []string{"88", "23"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestExtractTextItemsTj(t *testing.T) {
	stream := []byte(`BT
(Daily Crime Report)Tj
ET`)

	got := nonEmptyItems(extractTextItems(stream))
	want := []string{"Daily Crime Report"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestExtractTextItemsTDLineBreaks(t *testing.T) {
	stream := []byte(`BT
(Line1)Tj
0 -12 TD
(Line2)Tj
12 0 TD
(StillLine2)Tj
ET`)

	items := extractTextItems(stream)

	breaks := 0
	for _, s := range items {
		if s == "" {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("got %d line breaks, want 1: %v", breaks, items)
	}
}

func TestExtractTextItemsLargeTc(t *testing.T) {
	// Character spacing above the threshold spreads glyphs into columns.
	stream := []byte(`BT
5 Tc
(47)Tj
ET`)

	got := nonEmptyItems(extractTextItems(stream))
	want := []string{"4", "7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestGroupIntoLines(t *testing.T) {
	items := []string{"", "A", "B", "", "C", "", "", "D", "E", "F", ""}
	got := groupIntoLines(items)
	want := [][]string{{"A", "B"}, {"C"}, {"D", "E", "F"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPageText(t *testing.T) {
	p := &pdfPage{lines: [][]string{
		{"Daily", "Crime", "Report"},
		{"Sunday, February 8, 2026"},
	}}
	want := "Daily Crime Report\nSunday, February 8, 2026"
	if got := p.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestPageTables(t *testing.T) {
	p := &pdfPage{lines: [][]string{
		{"Daily Crime Report"},            // prose: no table follows directly
		{"Prince George's County Police"}, // prose
		{"Crime Statistics"},              // title row for the run below
		{"Offense", "Monday 2/2", "7-Day Totals"},
		{"Robbery", "4", "10"},
		{"Page 1 of 2"}, // prose after the run
		{"Traffic Incidents"},
		{"Type", "Count"},
		{"Collision", "12"},
	}}

	tables := p.Tables()
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}

	rows, err := tables[0].Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("table 0 has %d rows, want 3", len(rows))
	}
	if *rows[0][0] != "Crime Statistics" {
		t.Errorf("title row = %q, want Crime Statistics", *rows[0][0])
	}
	if *rows[2][0] != "Robbery" || *rows[2][1] != "4" {
		t.Errorf("data row = %v", rows[2])
	}

	rows, err = tables[1].Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || *rows[0][0] != "Traffic Incidents" {
		t.Errorf("table 1 rows = %v", rows)
	}
}

func TestPageTablesNoTables(t *testing.T) {
	p := &pdfPage{lines: [][]string{
		{"Daily Crime Report"},
		{"No statistics available"},
	}}
	if tables := p.Tables(); len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestNewPDFPageEndToEnd(t *testing.T) {
	// A miniature page: one prose header line, then a title and a
	// two-column table spread via TJ kerning.
	stream := []byte(`BT
1 0 0 1 36 760 Tm
(Daily Crime Report)Tj
1 0 0 1 36 730 Tm
(Crime Statistics)Tj
1 0 0 1 36 700 Tm
[(Offense)-4704.6(7-Day Totals)]TJ
1 0 0 1 36 680 Tm
[(Robbery)-5230(10)]TJ
ET`)

	p := newPDFPage(stream)
	tables := p.Tables()
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1: %v", len(tables), p.lines)
	}
	rows, err := tables[0].Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3: %v", len(rows), p.lines)
	}
	if *rows[0][0] != "Crime Statistics" || *rows[1][1] != "7-Day Totals" || *rows[2][1] != "10" {
		t.Errorf("rows = %v", rows)
	}
}
