package logger

import (
	"os"
	"strings"
)

// ConfigFromEnv reads the LOG_* variables.
func ConfigFromEnv() Config {
	return Config{
		Level:   getenvDefault("LOG_LEVEL", "info"),
		Format:  getenvDefault("LOG_FORMAT", "json"),
		Service: firstNonEmpty(os.Getenv("LOG_SERVICE"), os.Getenv("SERVICE_NAME")),
		Env:     firstNonEmpty(os.Getenv("LOG_ENV"), os.Getenv("ENV"), os.Getenv("APP_ENV")),
		Version: os.Getenv("VERSION"),
		Output:  getenvDefault("LOG_OUTPUT", "stdout"),
	}
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
