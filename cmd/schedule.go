package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zalepa/pgcrime/config"
)

// Schedule implements the "schedule" subcommand: run the download job once a
// day at the configured local time until interrupted.
func Schedule(args []string) {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to a YAML config file")
	debug := fs.Bool("debug", false, "verbose logging")
	now := fs.Bool("now", false, "run the download once immediately before scheduling")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pgcrime schedule [--config file] [--now]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid timezone %q: %v\n", cfg.Timezone, err)
		os.Exit(1)
	}

	spec, err := cronSpec(cfg.DailyRunTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	job := func() {
		if err := runDownload(cfg, "", "", *debug); err != nil {
			fmt.Fprintf(os.Stderr, "scheduled download failed: %v\n", err)
		}
	}

	if *now {
		job()
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, job); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	c.Start()
	fmt.Fprintf(os.Stderr, "scheduler running: daily at %s %s (ctrl-c to stop)\n", cfg.DailyRunTime, cfg.Timezone)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Fprintf(os.Stderr, "\nstopping scheduler\n")
	<-c.Stop().Done()
}

// cronSpec converts an HH:MM wall-clock time into a daily cron expression.
func cronSpec(hhmm string) (string, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid daily run time %q: expected HH:MM", hhmm)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid daily run time %q: hour or minute out of range", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
