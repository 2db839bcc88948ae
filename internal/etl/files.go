package etl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filename prefixes for the file-mediated hand-off between stages. Timestamps
// in the suffix are zero-padded, so lexicographic order is chronological.
const (
	rawFilePrefix          = "weather_data_"
	processedWeatherPrefix = "processed_weather_"
	processedAirPrefix     = "processed_air_"
	fileTimestampLayout    = "20060102_150405"
)

// LatestFile returns the path of the lexicographically greatest file in dir
// whose name starts with prefix, or "" when no file matches. A missing
// directory counts as no match, not an error.
func LatestFile(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	var latest string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if entry.Name() > latest {
			latest = entry.Name()
		}
	}

	if latest == "" {
		return "", nil
	}
	return filepath.Join(dir, latest), nil
}
