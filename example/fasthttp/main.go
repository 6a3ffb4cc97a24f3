package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/sinklog"
	"github.com/lixenwraith/sinklog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	// Access lines go to a size-rotated file, errors stay on stderr
	logger, err := sinklog.NewBuilder().
		LevelString("info").
		LevelFile(sinklog.LevelInfo, "/var/log/fasthttp/access.log").
		Policy("size").
		MaxFiles(10).
		MaxSizeMB(5).
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Shutdown()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(sinklog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler(logger),
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(logger *sinklog.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("text/plain")
		fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
		logger.Info(string(ctx.Method()), string(ctx.Path()), ctx.Response.StatusCode())
	}
}

func customLevelDetector(msg string) sinklog.Level {
	// Custom logic to detect log levels
	// Can inspect specific fasthttp message patterns
	if strings.Contains(msg, "error when serving connection") {
		return sinklog.LevelError
	}
	if strings.Contains(msg, "connection cannot be served") {
		return sinklog.LevelInfo
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
