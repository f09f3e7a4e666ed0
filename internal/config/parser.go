package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a requirements file from disk, validates it, and returns the resulting model.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, withPath(pyerrors.NewConfigError("", "could not read requirements file", err), path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return cfg, nil
}

// Parse decodes and validates requirements file contents.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		var cfgErr *pyerrors.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		msg := "invalid YAML"
		if line := extractLine(err); line > 0 {
			msg = fmt.Sprintf("invalid YAML at line %d", line)
		}
		return nil, pyerrors.NewConfigError("", msg, err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func withPath(err error, path string) error {
	var cfgErr *pyerrors.ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Path == "" {
		cfgErr.Path = path
	}
	return err
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
