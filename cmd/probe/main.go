package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/skinsight/engine/internal/probe"
)

// Default configuration constants.
const (
	defaultPollInterval = 200 * time.Millisecond
	defaultPollCount    = 10
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		pollInterval = flag.Duration("interval", defaultPollInterval, "Delay between preview polls")
		pollCount    = flag.Int("polls", defaultPollCount, "Number of preview polls to issue")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seedPack     = flag.String("seed-pack", "", "Write a synthetic reference pack to this path before probing")
		logFile      = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	cfg := &probe.Config{
		BaseURL:      *baseURL,
		PollInterval: *pollInterval,
		PollCount:    *pollCount,
		Timeout:      *timeout,
		SeedPackPath: *seedPack,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	if err := probe.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
