package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/skinsight/engine/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging configures logging to both console and file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`SkinSight Probe
===============

An end-to-end verification client for a running analysis service.

Usage:
  go run cmd/probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -interval duration
        Delay between preview polls (default 200ms)
  -polls int
        Number of preview polls to issue (default 10)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed-pack string
        Write a synthetic reference pack to this path before probing
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe a local service
  go run cmd/probe/main.go

  # Seed a reference pack, then probe
  go run cmd/probe/main.go -seed-pack ./refpack.json

  # Slow preview polling against a remote service
  go run cmd/probe/main.go -url http://10.0.0.5:9080 -interval 500ms -polls 30
`)
}
