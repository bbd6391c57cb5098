package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	funnelwire "github.com/funnelwire/funnelwire-go"
	"github.com/funnelwire/funnelwire-go/record"
)

// funnelctl is a thin operator tool: track a single event, kick off an
// export, or poll an export job, using config from the environment.

func main() {
	track := flag.String("track", "", "track one event with this name")
	user := flag.String("user", "", "user id the event belongs to")
	exportDays := flag.Int("export", 0, "start an export covering the last N days")
	poll := flag.String("poll", "", "poll an export job by id")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	if err := setupLogging(*level); err != nil {
		slog.Error("could not init logging", "err", err)
		os.Exit(1)
	}

	cfg := funnelwire.ConfigFromEnv()
	client, err := funnelwire.New(cfg)
	if err != nil {
		slog.Error("could not init client", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch {
	case *track != "":
		if *user == "" {
			slog.Error("missing required flag -user")
			os.Exit(1)
		}
		ev := record.New().
			Set("user_id", record.String(*user)).
			Set("event", record.String(*track)).
			Set("time", record.Instant(time.Now().UTC()))
		results, err := client.TrackEvents(ctx, []*record.Fields{ev}, funnelwire.TrackOptions{})
		if err != nil {
			slog.Error("track failed", "err", err)
			os.Exit(1)
		}
		slog.Info("tracked", "event", *track, "results", len(results))

	case *exportDays > 0:
		start := time.Now().UTC().AddDate(0, 0, -*exportDays)
		jobID, err := client.ExportData(ctx, start, time.Time{})
		if err != nil {
			slog.Error("export failed", "err", err)
			os.Exit(1)
		}
		slog.Info("export submitted", "job_id", jobID)

	case *poll != "":
		job, err := client.GetExportResults(ctx, *poll)
		if err != nil {
			slog.Error("poll failed", "err", err)
			os.Exit(1)
		}
		slog.Info("export status",
			"job_id", job.JobID,
			"state", job.State,
			"files", len(job.Files),
			"bytes", job.NumberOfBytes,
			"sessions", job.NumberOfSessions)

	default:
		flag.Usage()
	}
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}
