package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an assessment record does not exist or has expired
var ErrNotFound = errors.New("assessment record not found")

// timeLayout is used for timestamps stored as text
const timeLayout = "2006-01-02 15:04:05"

func encodeIndicators(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode indicators: %w", err)
	}
	return string(b), nil
}

func decodeIndicators(raw string) ([]string, error) {
	names := []string{}
	if raw == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("failed to decode indicators: %w", err)
	}
	return names, nil
}
