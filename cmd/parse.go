package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalepa/pgcrime/parser"
)

// Parse implements the "parse" subcommand: run the extraction pipeline over
// a local crime report PDF (or a directory of PDFs) and write the JSON
// result alongside each input.
func Parse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	jsonOut := fs.String("json", "", "output JSON file path (single file mode only)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime parse <input.pdf | directory> [--json output.json]\n\n")
		fmt.Fprintf(os.Stderr, "If a directory is given, all *.pdf files in it are parsed and a JSON\nfile is written alongside each PDF.\n\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	inputPath := fs.Arg(0)
	p := parser.New(parser.Config{Logger: newLogger(*debug)})

	info, err := os.Stat(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		pdfs, err := filepath.Glob(filepath.Join(inputPath, "*.pdf"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error globbing directory: %v\n", err)
			os.Exit(1)
		}
		if len(pdfs) == 0 {
			fmt.Fprintf(os.Stderr, "no PDF files found in %s\n", inputPath)
			os.Exit(1)
		}
		for _, pdf := range pdfs {
			parseSinglePDF(p, pdf, "")
		}
	} else {
		parseSinglePDF(p, inputPath, *jsonOut)
	}
}

func parseSinglePDF(p *parser.Parser, inputPath, jsonOut string) {
	if jsonOut == "" {
		jsonOut = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".json"
	}

	result, err := p.ParseFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(inputPath), err)
		return
	}

	if err := writeJSON(jsonOut, result); err != nil {
		fmt.Fprintf(os.Stderr, "%s: error writing JSON: %v\n", filepath.Base(inputPath), err)
		return
	}

	fmt.Fprintf(os.Stderr, "%s: %d records (%d violent, %d property), %d errors → %s\n",
		filepath.Base(inputPath),
		len(result.CrimeStatistics),
		result.Summary.ViolentCrimeCount,
		result.Summary.PropertyCrimeCount,
		len(result.ParseErrors),
		filepath.Base(jsonOut))
	for _, e := range result.ParseErrors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
}
