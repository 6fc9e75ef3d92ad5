package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	return val
}

func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	valAsInt, err := strconv.Atoi(val)

	if err != nil {
		return fallback
	}

	return valAsInt
}

func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	// accept the "yes"/"no" values the platform settings screens use
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}

	boolVal, err := strconv.ParseBool(val)

	if err != nil {
		return fallback
	}

	return boolVal
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(val)

	if err != nil {
		return fallback
	}

	return d
}

func GetStrings(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)

	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}

	parts := strings.Split(val, ",")
	values := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	return values
}
