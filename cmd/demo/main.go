package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/sinklog"
)

const configFile = "demo_config.toml"
const configBasePath = "logging." // Base path for log settings in config

// Example TOML content
var tomlContent = `
# Example demo_config.toml
[logging]
  level = "debug"
  internal_errors_to_stderr = true
  # File bindings are made in code below
`

func main() {
	fmt.Println("--- sinklog demo ---")

	// --- Setup Config ---
	err := os.WriteFile(configFile, []byte(tomlContent), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
	} else {
		fmt.Printf("Created dummy config file: %s\n", configFile)
	}

	// Register logger keys and defaults, then load file and CLI overrides
	// such as --logging.level=info
	loader := config.New()
	if err := loader.RegisterStruct(configBasePath, *sinklog.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register config: %v\n", err)
		os.Exit(1)
	}
	if err := loader.Load(configFile, os.Args[1:]); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v. Using defaults.\n", err)
	}

	cfg, err := sinklog.NewConfigFromLoader(loader, configBasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logger config: %v\n", err)
		os.Exit(1)
	}
	if err := sinklog.Default().ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply logger config: %v\n", err)
		os.Exit(1)
	}

	sinklog.StartTimerHere()

	// --- Console output at each level ---
	_ = sinklog.SetLevel(sinklog.LevelDebug)
	sinklog.Error("Error info")
	sinklog.WithStream(sinklog.LevelInfo, func(w io.Writer) {
		fmt.Fprint(w, "test")
	})
	sinklog.Info("(INFO)")
	sinklog.Debug("Debug")
	sinklog.Stream(sinklog.LevelDebug).Print(2, "dfsadf").Close()

	_ = sinklog.SetLevel(sinklog.LevelInfo)
	sinklog.Stream(sinklog.LevelInfo).Print("INFO set").Close()
	sinklog.Error("Error info")
	sinklog.Info("(INFO)")
	sinklog.Debug("Debug") // Dropped

	sinklog.StartTimerHere()

	_ = sinklog.SetLevel(sinklog.LevelError)
	sinklog.Stream(sinklog.LevelError).Print("ERROR set").Close()
	sinklog.Error("Error info")
	sinklog.Info("(INFO)") // Dropped
	sinklog.Debug("Debug") // Dropped

	sinklog.StopTimerHere(time.Microsecond)
	sinklog.StopTimerHere(time.Millisecond)

	// --- File bindings ---
	_ = sinklog.SetLevel(sinklog.LevelDebug)
	bindings := []struct {
		level sinklog.Level
		path  string
		rot   sinklog.Rotation
	}{
		{sinklog.LevelDebug, "logfileDEB.log", sinklog.DailyRotation()},
		{sinklog.LevelInfo, "logfile.log", sinklog.SizeRotation(4, 500)},
		{sinklog.LevelError, "logfile.log", sinklog.SizeRotation(4, 500)}, // Shares the info sink
	}
	for _, b := range bindings {
		if err := sinklog.SetLogFile(b.level, b.path, b.rot); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind %s: %v\n", b.level, err)
		}
	}

	for i := 0; i < 10; i++ {
		sinklog.Error("Log file Error info")
		sinklog.Stream(sinklog.LevelInfo).Print("Log file test", i).Close()
		sinklog.Info("Log file (INFO)")
		sinklog.Debug("Log file Debug")
		sinklog.Stream(sinklog.LevelDebug).Printf("Log file%ddfsadf", i).Close()
	}

	for _, st := range sinklog.Default().Stats() {
		fmt.Printf("%-9s -> %-16s policy=%-5s rotations=%d\n", st.Level, st.Path, st.Policy, st.Rotations)
	}

	// --- Shutdown Logger ---
	if err := sinklog.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	}
	fmt.Println("--- Demo Finished ---")
	fmt.Println("Check logfile.log, its numbered backups and logfileDEB.log.")
}
