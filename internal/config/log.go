package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel maps log_level onto zerolog. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
