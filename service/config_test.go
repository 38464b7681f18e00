// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_MatchesStatedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 80.0, cfg.MemoryThreshold)
	assert.Equal(t, 90.0, cfg.CriticalMemoryThreshold)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, 120, cfg.RateLimitRPM)
}

func TestValidate_RejectsOutOfRangeMemoryThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemoryThreshold = 150
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownEnvironment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Environment = "sandbox"
	assert.Error(t, cfg.Validate())
}

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadConfigFromEnv_OverlaysProvidedVariables(t *testing.T) {
	cfg := LoadConfigFromEnv(fakeEnv(map[string]string{
		"ENVIRONMENT":      "production",
		"MEMORY_THRESHOLD": "75.5",
		"RATE_LIMIT_RPM":   "240",
		"ALLOWED_ORIGINS":  "https://a.test, https://b.test",
	}))
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 75.5, cfg.MemoryThreshold)
	assert.Equal(t, 240, cfg.RateLimitRPM)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
}

func TestLoadConfigFromEnv_LeavesDefaultsWhenUnset(t *testing.T) {
	cfg := LoadConfigFromEnv(fakeEnv(nil))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv_IgnoresUnparseableValues(t *testing.T) {
	cfg := LoadConfigFromEnv(fakeEnv(map[string]string{
		"RATE_LIMIT_RPM": "not-a-number",
	}))
	assert.Equal(t, DefaultConfig().RateLimitRPM, cfg.RateLimitRPM)
}
