// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go - NO GOLEM DEPENDENCY
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      *zap.SugaredLogger
	logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	initLogger()
}

func initLogger() {
	logLevel.SetLevel(parseLevel(getLogLevel()))

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = logLevel

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	log = logger.Sugar()
}

func parseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func getLogLevel() string {
	level := os.Getenv("LEDGER_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return strings.ToLower(level)
}

// SetLogLevel changes the level of the package logger at runtime.
func SetLogLevel(name string) {
	logLevel.SetLevel(parseLevel(name))
}

// SetLogger replaces the package logger, e.g. with zaptest.NewLogger in tests.
func SetLogger(logger *zap.Logger) {
	log = logger.Sugar()
}
