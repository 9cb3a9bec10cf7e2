// Package config provides small environment-variable helpers shared by the
// core library and its thin CLI entrypoint.
package config

import (
	"os"
	"strconv"
)

// GetEnv returns the value of an environment variable or a default value if not set
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value if not set
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// DataDir returns the directory holding the dataset and spatial index,
// defaulting to the current directory.
func DataDir() string {
	return GetEnv("EVEFRONTIER_DATA_DIR", ".")
}

// DatasetSource returns the configured dataset release source ("latest" or
// a specific release tag).
func DatasetSource() string {
	return GetEnv("EVEFRONTIER_DATASET_SOURCE", "latest")
}

// ShipDataPath returns the configured ship catalog CSV path override, or
// empty string if unset (caller falls back to its own resolution rules).
func ShipDataPath() string {
	return GetEnv("EVEFRONTIER_SHIP_DATA", "")
}
