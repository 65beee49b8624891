package util

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var envOnce sync.Once

// env returns the global viper instance reading straight from the process
// environment. Values loaded from a config file via viper.ReadInConfig are
// visible as well.
func env() *viper.Viper {
	envOnce.Do(func() {
		viper.AutomaticEnv()
	})

	return viper.GetViper()
}

func lookup(key string) (string, bool) {
	v := env()
	if !v.IsSet(key) {
		return "", false
	}

	return v.GetString(key), true
}

func GetEnv(key string, defaultVal string) string {
	if val, ok := lookup(key); ok {
		return val
	}

	return defaultVal
}

func GetEnvEnum(key string, defaultVal string, allowedValues []string) string {
	val := GetEnv(key, defaultVal)

	for _, allowed := range allowedValues {
		if val == allowed {
			return val
		}
	}

	log.Panic().Str("key", key).Str("value", val).Strs("allowed", allowedValues).Msg("Value is not allowed")

	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsFloat(key string, defaultVal float64) float64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseFloat(strVal, 64); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsDuration parses a Go duration string ("500ms", "2s").
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal := GetEnv(key, "")

	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsStringArr reads a separated list, "," by default.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")

	if len(strVal) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	parts := strings.Split(strVal, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}

	return result
}
