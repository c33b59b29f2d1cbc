package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/sked/pkg/model"
)

// LoadWeights reads constraint weights from a YAML file. Fields omitted
// from the file keep their default values; a weight explicitly set to
// zero or below is a configuration error, since weights are relative
// positive integers.
func LoadWeights(path string) (model.ConstraintWeights, error) {
	weights := model.DefaultConstraintWeights()
	if path == "" {
		return weights, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return weights, fmt.Errorf("read weights file: %w", err)
	}

	if err := yaml.Unmarshal(data, &weights); err != nil {
		return weights, fmt.Errorf("parse weights file %s: %w", path, err)
	}

	if !weights.Valid() {
		return weights, fmt.Errorf("weights file %s: all weights must be positive integers", path)
	}
	return weights, nil
}
