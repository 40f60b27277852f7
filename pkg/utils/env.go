package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))

	if v == "" {
		return defaultValue
	}

	return v
}

// GetEnvBool falls back to defaultValue when the variable is unset or unparsable.
func GetEnvBool(key string, defaultValue bool) bool {
	v := GetEnvTrimmed(key)
	if v == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvNonNegativeInt accepts 0 so a limit can be switched off explicitly.
func GetEnvNonNegativeInt(key string, defaultValue int) int {
	v := GetEnvTrimmed(key)
	if v == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := GetEnvTrimmed(key)
	if v == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(v)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

// GetEnvList splits a comma-separated variable, trimming and dropping empties.
func GetEnvList(key string) []string {
	return SplitList(os.Getenv(key))
}

func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
