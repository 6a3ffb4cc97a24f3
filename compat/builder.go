package compat

import (
	"fmt"

	"github.com/lixenwraith/sinklog"
)

// Builder provides a flexible way to create configured logger adapters for gnet and fasthttp
// It can use an existing *sinklog.Logger instance or create a new one from a *sinklog.Config
type Builder struct {
	logger *sinklog.Logger
	logCfg *sinklog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters
// Recommended for applications that already have a central logger instance
// If this is set WithConfig is ignored
func (b *Builder) WithLogger(l *sinklog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("sinklog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance
// This is used only if an existing logger is NOT provided via WithLogger
// If neither is used, the package default logger is shared
func (b *Builder) WithConfig(cfg *sinklog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getLogger resolves the logger to be used, creating one if necessary
func (b *Builder) getLogger() (*sinklog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	if b.logCfg == nil {
		b.logger = sinklog.Default()
		return b.logger, nil
	}

	l := sinklog.NewLogger()
	if err := l.ApplyConfig(b.logCfg); err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the underlying *sinklog.Logger instance
// If a logger has not been provided or created yet, it will be initialized
func (b *Builder) GetLogger() (*sinklog.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	appLogger := sinklog.NewLogger()
//	if err := appLogger.SetLogFile(sinklog.LevelError, "server.err", sinklog.DailyRotation()); err != nil {
//		panic(fmt.Sprintf("failed to configure logger: %v", err))
//	}
//
//	builder := compat.NewBuilder().WithLogger(appLogger)
//
//	gnetLogger, err := builder.BuildGnet()
//	if err != nil { /* handle error */ }
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//
//	// For gnet, the adapter is passed directly into the gnet options
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	// For fasthttp, the adapter is assigned to the server's Logger field
//	server := &fasthttp.Server{
//		Handler: handler,
//		Logger:  fasthttpLogger,
//	}
//	go server.ListenAndServe(":8080")
