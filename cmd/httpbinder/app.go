package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/httpbinder/internal/binder"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/config"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/monitoring"
)

// app is everything a command needs once configuration is resolved.
type app struct {
	config   *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	gatherer *prometheus.Registry
	registry *binder.Registry
}

// globalFlags override the environment.
type globalFlags struct {
	bindingsFile string
	logLevel     string
	dev          bool
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.bindingsFile != "" {
		cfg.Bindings.File = flags.bindingsFile
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.dev {
		cfg.Logging.Development = true
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
		if flags.logLevel != "" {
			logCfg.Level = flags.logLevel
		}
	}
	// stdout carries command output.
	logCfg.OutputPaths = []string{"stderr"}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	registry := binder.NewRegistry(
		binder.WithLogger(logger),
		binder.WithMetrics(metrics),
		binder.WithSharedPoolSize(cfg.IOPool.SharedSize),
	)

	a := &app{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		gatherer: reg,
		registry: registry,
	}
	if err := a.loadBindings(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) loadBindings() error {
	path := a.config.Bindings.File
	if path == "" {
		a.logger.Warn("no bindings file configured; registry is empty")
		return nil
	}

	file, err := binder.LoadFile(path)
	if err != nil {
		return err
	}
	if err := file.Apply(binder.New(a.registry)); err != nil {
		return fmt.Errorf("apply bindings: %w", err)
	}
	if err := a.registry.Validate(); err != nil {
		return fmt.Errorf("invalid bindings: %w", err)
	}

	a.logger.Info("bindings loaded",
		zap.String("file", path),
		zap.Int("clients", len(file.Clients)),
	)
	return nil
}

func (a *app) close() {
	if err := a.registry.Close(); err != nil {
		a.logger.Error("failed to close registry", zap.Error(err))
	}
	_ = a.logger.Sync()
}
