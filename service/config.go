// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package service wires the extraction, redaction, detection, cache and
// retention components into the HTTP surface the routing layer exposes
// to callers.
package service

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hideme/pdf-redact-engine/logger"
)

// Config controls the service's memory-monitoring, rate-limiting, and
// caching behavior. Field names and defaults mirror the environment
// variables the routing layer recognizes.
type Config struct {
	Environment    string `validate:"omitempty,oneof=development staging production"`
	AllowedOrigins []string

	MemoryThreshold          float64       `validate:"gt=0,lt=100"`
	CriticalMemoryThreshold  float64       `validate:"gt=0,lt=100"`
	MemoryCheckInterval      time.Duration `validate:"gt=0"`
	EnableMemoryMonitoring   bool
	AdaptiveMemoryThresholds bool

	RateLimitRPM     int `validate:"gt=0"`
	AdminRateLimitRPM int `validate:"gt=0"`
	AnonRateLimitRPM int `validate:"gt=0"`
	RateLimitBurst   int `validate:"gt=0"`
	RedisURL         string

	CacheTTL             time.Duration `validate:"gt=0"`
	CacheCleanupInterval time.Duration `validate:"gt=0"`
	CacheMaxEntries      int           `validate:"gt=0"`

	RetentionDays int `validate:"min=1"`
}

// DefaultConfig matches spec.md §6's stated defaults: 300s cache TTL,
// 90-day retention, memory thresholds of 80%/90%.
func DefaultConfig() Config {
	return Config{
		Environment:    "development",
		AllowedOrigins: []string{"*"},

		MemoryThreshold:          80.0,
		CriticalMemoryThreshold:  90.0,
		MemoryCheckInterval:      5 * time.Second,
		EnableMemoryMonitoring:   true,
		AdaptiveMemoryThresholds: true,

		RateLimitRPM:      120,
		AdminRateLimitRPM: 600,
		AnonRateLimitRPM:  60,
		RateLimitBurst:    20,

		CacheTTL:             300 * time.Second,
		CacheCleanupInterval: 60 * time.Second,
		CacheMaxEntries:      1000,

		RetentionDays: 90,
	}
}

// Validate runs struct-tag validation, mirroring xtract.Config.Validate.
func (cfg *Config) Validate() error {
	logger.Debug("service: validating config")
	return validator.New().Struct(cfg)
}
