package parser

// Record is one normalized crime-statistics row. Keys are canonical field
// names (snake_case identifiers or ISO dates produced by the column
// normalizer); values are int64, float64, or string. A field whose source
// cell was absent is absent from the map, not set to nil.
type Record map[string]any

// Summary classifies the parsed records into violent and property buckets.
// It is derived data, recomputed in full on every parse.
type Summary struct {
	TotalOffenseTypes  int      `json:"total_offense_types"`
	ViolentCrimes      []string `json:"violent_crimes"`
	PropertyCrimes     []string `json:"property_crimes"`
	ViolentCrimeCount  int      `json:"violent_crime_count"`
	PropertyCrimeCount int      `json:"property_crime_count"`
}

// Result is the complete output of one document parse. Its JSON shape is the
// wire contract for the export and web layers: record fields vary per table,
// and a missing key means "value not reported", never zero.
type Result struct {
	ReportDate        *string  `json:"report_date"`
	ExtractedDateText *string  `json:"extracted_date_text"`
	DownloadTimestamp string   `json:"download_timestamp"`
	SourceFile        string   `json:"source_file"`
	CrimeStatistics   []Record `json:"crime_statistics"`
	Summary           Summary  `json:"summary"`
	ParseErrors       []string `json:"parse_errors"`
}

// Document is a paginated source the pipeline can parse. The PDF backend
// implements it; tests substitute in-memory fakes.
type Document interface {
	Pages() []Page
}

// Page exposes the extractable plain text and the tables detected on one
// page of a document.
type Page interface {
	Text() string
	Tables() []Table
}

// Table yields its raw cell grid. The first row is a title, the second the
// column header, the remainder data. A nil cell means nothing was detected
// at that position, which is distinct from an empty string.
type Table interface {
	Rows() ([][]*string, error)
}

// Grid is an in-memory cell grid satisfying Table.
type Grid [][]*string

func (g Grid) Rows() ([][]*string, error) { return g, nil }

// Cell returns a pointer to s, for building Grid literals.
func Cell(s string) *string { return &s }
