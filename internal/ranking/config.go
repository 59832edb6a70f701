package ranking

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
)

// Weights defines the integer weight applied to each relevance signal.
type Weights struct {
	TitleMatch   int `json:"title_match"`   // Per interest token found in the title (default: 4)
	SubjectMatch int `json:"subject_match"` // Per interest token found in the subjects (default: 2)
	AgeMatch     int `json:"age_match"`     // Age-appropriate subject present (default: 3)
	Cover        int `json:"cover"`         // Cover image available (default: 2)
	Author       int `json:"author"`        // At least one author known (default: 1)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configuration
}

// DefaultWeights returns the default weight configuration.
func DefaultWeights() *Weights {
	return &Weights{
		TitleMatch:   4,
		SubjectMatch: 2,
		AgeMatch:     3,
		Cover:        2,
		Author:       1,
	}
}

// LoadCalibration loads ranking weights from a JSON calibration file.
// An empty path yields the defaults with no error. If the file can't be read
// or parsed, the defaults are returned together with the error so callers can
// log and carry on. Partial configurations are merged with the defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights.
// Only non-zero values from the override are applied.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	if override == nil {
		return &result
	}

	if override.TitleMatch != 0 {
		result.TitleMatch = override.TitleMatch
	}
	if override.SubjectMatch != 0 {
		result.SubjectMatch = override.SubjectMatch
	}
	if override.AgeMatch != 0 {
		result.AgeMatch = override.AgeMatch
	}
	if override.Cover != 0 {
		result.Cover = override.Cover
	}
	if override.Author != 0 {
		result.Author = override.Author
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	check := func(name string, from, to int) {
		if from != to {
			overrides = append(overrides, fmt.Sprintf("%s: %d -> %d", name, from, to))
		}
	}
	check("title_match", defaults.TitleMatch, loaded.TitleMatch)
	check("subject_match", defaults.SubjectMatch, loaded.SubjectMatch)
	check("age_match", defaults.AgeMatch, loaded.AgeMatch)
	check("cover", defaults.Cover, loaded.Cover)
	check("author", defaults.Author, loaded.Author)

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
