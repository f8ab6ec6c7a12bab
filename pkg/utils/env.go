package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt is Getenv for integer settings. A present but unparsable value is an error.
func GetenvInt(key string, fallback int) (int, error) {
	raw := Getenv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// GetenvBool accepts 1/0, true/false, yes/no.
func GetenvBool(key string, fallback bool) (bool, error) {
	raw := strings.ToLower(Getenv(key, ""))
	switch raw {
	case "":
		return fallback, nil
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
}
