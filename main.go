package main

import (
	"fmt"
	"os"

	"github.com/zalepa/pgcrime/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		cmd.Parse(os.Args[2:])
	case "download":
		cmd.Download(os.Args[2:])
	case "export":
		cmd.Export(os.Args[2:])
	case "manifest":
		cmd.Manifest(os.Args[2:])
	case "schedule":
		cmd.Schedule(os.Args[2:])
	case "web":
		cmd.Web(os.Args[2:])
	case "viz":
		cmd.Viz(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: pgcrime <command>

Commands:
  parse      Parse a daily crime report PDF into JSON
  download   Download today's report and archive it
  export     Convert archived JSON reports to CSV
  manifest   Rebuild manifest.json for the JSON archive
  schedule   Run the daily download on a schedule
  web        Serve a dashboard over the archived reports
  viz        Chart crime trends from the archived reports
`)
}
