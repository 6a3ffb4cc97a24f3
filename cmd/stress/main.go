package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/sinklog"
	"golang.org/x/sync/errgroup"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 64
	lineMarker     = "#end"
)

const configFile = "stress_config.toml"
const logsDir = "./logs"

// Example TOML content for stress test.
// Info and error share one size-rotated file to exercise aliasing under load.
var tomlContent = `
# Example stress_config.toml
[log]
  level = "debug"
  info_file = "./logs/stress.log"
  error_file = "./logs/stress.log"
  debug_file = "./logs/debug.log"
  policy = "size"
  max_files = 5
  max_size_kb = 1000 # Force frequent rotation
  internal_errors_to_stderr = true
`

var levels = []sinklog.Level{
	sinklog.LevelDebug,
	sinklog.LevelInfo,
	sinklog.LevelError,
}

var logger *sinklog.Logger

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity, mixing plain and streamed lines
func logBurst(burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msg := generateRandomMessage(rand.Intn(maxMessageSize) + 10)

		if i%4 == 0 {
			e := logger.Stream(level)
			e.Print("bst", burstID, "seq", i)
			e.Print("", msg)
			e.Print("", lineMarker)
			e.Close()
			continue
		}

		args := []any{"bst", burstID, "seq", i, msg, lineMarker}
		switch level {
		case sinklog.LevelDebug:
			logger.Debug(args...)
		case sinklog.LevelInfo:
			logger.Info(args...)
		case sinklog.LevelError:
			logger.Error(args...)
		}
	}
}

// verifyLines checks every line of the rotated set ends with the marker
func verifyLines(pattern string) (total, broken int, err error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return 0, 0, err
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return total, broken, err
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			total++
			if !strings.HasSuffix(scanner.Text(), lineMarker) {
				broken++
			}
		}
		scanErr := scanner.Err()
		f.Close()
		if scanErr != nil {
			return total, broken, scanErr
		}
	}
	return total, broken, nil
}

func main() {
	fmt.Println("--- Logger Stress Test ---")

	// --- Setup Config ---
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		os.Exit(1)
	}
	_ = os.RemoveAll(logsDir) // Clean previous run's logs
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := sinklog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err = sinklog.NewBuilder().Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logger initialized. Logs will be written to: %s\n", logsDir)

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Run Test ---
	var completedBursts atomic.Int64
	burstChan := make(chan int, numWorkers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(burstChan)
		for i := 1; i <= totalBursts; i++ {
			select {
			case burstChan <- i:
			case <-gctx.Done():
				fmt.Println("\n[Signal Received] Halting burst submission.")
				return nil
			}
		}
		return nil
	})

	startTime := time.Now()
	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			for burstID := range burstChan {
				logBurst(burstID)
				completed := completedBursts.Add(1)
				if completed%10 == 0 || completed == totalBursts {
					fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "\nWorker error: %v\n", err)
	}
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	for _, st := range logger.Stats() {
		fmt.Printf("%-9s rotations=%d rotation_errors=%d write_errors=%d\n",
			st.Level, st.Rotations, st.RotationErrors, st.WriteErrors)
	}

	// --- Shutdown Logger ---
	if err := logger.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	}

	// --- Verify ---
	for _, pattern := range []string{"stress.log*", "debug.log*"} {
		total, broken, err := verifyLines(filepath.Join(logsDir, pattern))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Verification of %s failed: %v\n", pattern, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d lines, %d broken\n", pattern, total, broken)
		if broken > 0 {
			os.Exit(1)
		}
	}
}
