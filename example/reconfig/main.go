package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sinklog"
)

// Simulate rapid reconfiguration while another goroutine logs
func main() {
	var count atomic.Int64

	dir, err := os.MkdirTemp("", "sinklog-reconfig")
	if err != nil {
		fmt.Printf("Temp dir error: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	logger := sinklog.NewLogger()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			logger.Info("Test log", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Each override swaps all bindings at once, lines go to the old or the new file
	for i := 0; i < 10; i++ {
		err := logger.ApplyOverride(
			"level=debug",
			fmt.Sprintf("info_file=%s", filepath.Join(dir, fmt.Sprintf("run%d.log", i))),
			"policy=size",
			fmt.Sprintf("max_size_kb=%d", 1+i),
		)
		if err != nil {
			fmt.Printf("Override error: %v\n", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Invalid overrides are rejected and leave the last binding active
	if err := logger.ApplyOverride("policy=hourly", "max_files=-1"); err != nil {
		fmt.Printf("Rejected as expected: %v\n", err)
	}

	time.Sleep(100 * time.Millisecond)
	close(done)
	<-stopped
	fmt.Printf("Total logs attempted: %d\n", count.Load())

	if err := logger.Shutdown(); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "run*.log*"))
	fmt.Printf("Log files written: %d\n", len(files))
}
