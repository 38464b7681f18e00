// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/hideme/pdf-redact-engine/logger"
)

// LoadConfigFromEnv starts from DefaultConfig and overlays every
// recognized environment variable, in a plain, no-framework style (no
// reflection-based env binding package; each variable is read and
// parsed explicitly). getenv is injected so tests don't have to mutate
// process-wide environment state.
func LoadConfigFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if v := getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}

	setFloat(getenv, "MEMORY_THRESHOLD", &cfg.MemoryThreshold)
	setFloat(getenv, "CRITICAL_MEMORY_THRESHOLD", &cfg.CriticalMemoryThreshold)
	setDuration(getenv, "MEMORY_CHECK_INTERVAL", &cfg.MemoryCheckInterval)
	setBool(getenv, "ENABLE_MEMORY_MONITORING", &cfg.EnableMemoryMonitoring)
	setBool(getenv, "ADAPTIVE_MEMORY_THRESHOLDS", &cfg.AdaptiveMemoryThresholds)

	setInt(getenv, "RATE_LIMIT_RPM", &cfg.RateLimitRPM)
	setInt(getenv, "ADMIN_RATE_LIMIT_RPM", &cfg.AdminRateLimitRPM)
	setInt(getenv, "ANON_RATE_LIMIT_RPM", &cfg.AnonRateLimitRPM)
	setInt(getenv, "RATE_LIMIT_BURST", &cfg.RateLimitBurst)
	if v := getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	return cfg
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setFloat(getenv func(string) string, name string, dst *float64) {
	v := getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Error("service: invalid float env var", "name", name, "value", v, "err", err)
		return
	}
	*dst = f
}

func setInt(getenv func(string) string, name string, dst *int) {
	v := getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Error("service: invalid int env var", "name", name, "value", v, "err", err)
		return
	}
	*dst = n
}

func setBool(getenv func(string) string, name string, dst *bool) {
	v := getenv(name)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Error("service: invalid bool env var", "name", name, "value", v, "err", err)
		return
	}
	*dst = b
}

func setDuration(getenv func(string) string, name string, dst *time.Duration) {
	v := getenv(name)
	if v == "" {
		return
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		logger.Error("service: invalid duration env var", "name", name, "value", v, "err", err)
		return
	}
	*dst = time.Duration(secs) * time.Second
}
