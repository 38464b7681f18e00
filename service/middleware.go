// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/hideme/pdf-redact-engine/logger"
)

// securityHeaders attaches the fixed set of defensive headers every
// response carries, tightening the content-security-policy outside
// development the way the allowed-origins list is only honored as
// configured (no implicit wildcard in production).
func securityHeaders(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Embedder-Policy", "require-corp")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")
			if cfg.Environment == "production" {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			} else {
				h.Set("Content-Security-Policy", "default-src 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cors honors the configured AllowedOrigins list; "*" (the default)
// reflects any origin, matching a permissive development posture.
func cors(cfg Config) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	allowAll := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterTier buckets callers into admin/authenticated/anonymous rate
// tiers, each with its own requests-per-minute budget, the way the
// config separates RateLimitRPM/AdminRateLimitRPM/AnonRateLimitRPM.
type limiterTier int

const (
	tierAnonymous limiterTier = iota
	tierAuthenticated
	tierAdmin
)

// rateLimiter hands out one token-bucket limiter per client key,
// grouped by tier, so a noisy anonymous caller never eats into the
// budget reserved for authenticated or admin callers.
type rateLimiter struct {
	cfg      Config
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newRateLimiter(cfg Config) *rateLimiter {
	return &rateLimiter{cfg: cfg, limiters: make(map[string]*rate.Limiter)}
}

func (rl *rateLimiter) rpmForTier(tier limiterTier) int {
	switch tier {
	case tierAdmin:
		return rl.cfg.AdminRateLimitRPM
	case tierAuthenticated:
		return rl.cfg.RateLimitRPM
	default:
		return rl.cfg.AnonRateLimitRPM
	}
}

func (rl *rateLimiter) limiterFor(tier limiterTier, key string) *rate.Limiter {
	mapKey := key + "|" + strconv.Itoa(int(tier))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.limiters[mapKey]; ok {
		return lim
	}
	rpm := rl.rpmForTier(tier)
	perSecond := rate.Limit(float64(rpm) / 60.0)
	lim := rate.NewLimiter(perSecond, rl.cfg.RateLimitBurst)
	rl.limiters[mapKey] = lim
	return lim
}

func tierOf(r *http.Request) limiterTier {
	switch r.Header.Get("X-API-Role") {
	case "admin":
		return tierAdmin
	case "authenticated":
		return tierAuthenticated
	default:
		return tierAnonymous
	}
}

// middleware rejects a request with a resource-exhaustion error (HTTP
// 503) once its tier's per-client token bucket is exhausted.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := tierOf(r)
		key := r.RemoteAddr
		lim := rl.limiterFor(tier, key)
		if !lim.Allow() {
			logger.Error("service: rate limit exceeded", "tier", tier, "client", key, "path", r.URL.Path)
			WriteError(w, r, NewResourceExhaustionError("rate limit exceeded", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
