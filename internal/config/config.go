// Package config loads merge settings from the environment (M3U_MERGE_* vars)
// with an optional .env file. Flags on the CLI override whatever is loaded
// here; the env layer exists so containerised deployments need no arguments.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds merge, source and serve settings.
type Config struct {
	// Inputs are playlist sources (file paths or http(s) URLs) in merge
	// order; the first one seeds the header and the base channel order.
	Inputs []string
	// Output is the path the merged playlist is written to.
	Output string
	// RulesPath points at the YAML rules file ("" = no rules).
	RulesPath string

	// CachePath is the sqlite fetch cache for remote sources ("" = no cache).
	CachePath string
	// FetchTimeout bounds a single remote source download.
	FetchTimeout time.Duration

	// Serve mode.
	ListenAddr      string
	RefreshInterval time.Duration // how often serve mode re-merges; 0 = only at startup
	MaxConns        int           // cap on concurrent serve connections

	// Classify switches on bucket arrangement even without a rules file.
	Classify bool
}

// Load reads config from the environment. Call LoadEnvFile(".env") first to
// layer in a .env file.
func Load() *Config {
	return &Config{
		Inputs:          splitList(os.Getenv("M3U_MERGE_INPUTS")),
		Output:          getEnv("M3U_MERGE_OUTPUT", "merged.m3u"),
		RulesPath:       os.Getenv("M3U_MERGE_RULES"),
		CachePath:       os.Getenv("M3U_MERGE_CACHE"),
		FetchTimeout:    getEnvDuration("M3U_MERGE_TIMEOUT", 60*time.Second),
		ListenAddr:      getEnv("M3U_MERGE_ADDR", ":8560"),
		RefreshInterval: getEnvDuration("M3U_MERGE_REFRESH", 0),
		MaxConns:        getEnvInt("M3U_MERGE_MAX_CONNS", 64),
		Classify:        getEnvBool("M3U_MERGE_CLASSIFY", false),
	}
}

// splitList parses a comma-separated env value into its non-blank elements.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
