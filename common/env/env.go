// Package env reads typed configuration values from the process environment.
package env

import (
	"os"
	"strconv"
)

func String(name string, defaultValue string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return defaultValue
}

func Bool(name string, defaultValue bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func Int(name string, defaultValue int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func Float64(name string, defaultValue float64) float64 {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
