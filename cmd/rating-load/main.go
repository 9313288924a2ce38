package main

import (
	"context"
	"flag"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/lojista/internal/adapters/http/client"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/ratingload"
	"github.com/okian/lojista/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumRatings  = 1000
	defaultReplayEvery = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultRunTimeout  = 5 * time.Minute
	logFilePermission  = 0600
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:3333", "Base URL of the merchant backend")
		merchants   = flag.String("merchants", "1,2,3", "Comma separated merchant ids to rate")
		numRatings  = flag.Int("ratings", defaultNumRatings, "Number of distinct ratings to submit")
		replayEvery = flag.Int("replay-every", defaultReplayEvery, "Resend every n-th rating with the same idempotency key (0 disables)")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submissions")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		latitude    = flag.Float64("lat", -23.5505, "Viewer latitude used when reading profiles")
		longitude   = flag.Float64("lon", -46.6333, "Viewer longitude used when reading profiles")
		outputFile  = flag.String("output", "", "Write the submitted ratings to this JSON file")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.Bool("verbose", false, "Log every failed submission")
	)
	flag.Parse()

	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = io.MultiWriter(os.Stdout, f)
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("rating-load")

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &ratingload.Config{
		Merchants:   splitIDs(*merchants),
		NumRatings:  *numRatings,
		ReplayEvery: *replayEvery,
		Workers:     *workers,
		Origin:      model.Coordinates{Latitude: *latitude, Longitude: *longitude},
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}
	api := client.New(*baseURL, client.WithTimeout(*timeout), client.WithLogger(log.Named("client")))

	if _, err := ratingload.Run(ctx, log, cfg, api); err != nil {
		log.Error(ctx, "load run failed", logger.Error(err))
		os.Exit(1)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
