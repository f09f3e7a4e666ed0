package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// DefaultFileName is the requirements file looked up when no path is given.
const DefaultFileName = "pyreqs.yaml"

// Config represents a pyreqs requirements file.
type Config struct {
	Version     string `yaml:"version" validate:"required,semver"`
	Name        string `yaml:"name,omitempty" validate:"omitempty,max=100"`
	Description string `yaml:"description,omitempty"`
	// Settings is merged into the layered settings by LoadSettings.
	Settings     map[string]any     `yaml:"settings,omitempty"`
	Requirements []RequirementEntry `yaml:"requirements" validate:"omitempty,dive"`
}

// RequirementEntry is one item of the requirements list. In YAML it is either
// a bare spec string or a mapping with a spec and an optional check.
type RequirementEntry struct {
	Spec  string     `yaml:"spec" validate:"required"`
	Check *CheckSpec `yaml:"check,omitempty"`
}

// CheckSpec selects a custom checker. Exactly one of Import or Command is set.
type CheckSpec struct {
	Import  string            `yaml:"import,omitempty" validate:"omitempty,python_module"`
	Command string            `yaml:"command,omitempty"`
	Shell   string            `yaml:"shell,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

var (
	entryKeys = map[string]struct{}{"spec": {}, "check": {}}
	checkKeys = map[string]struct{}{"import": {}, "command": {}, "shell": {}, "env": {}}
)

// UnmarshalYAML accepts either a string or a {spec, check} mapping.
func (e *RequirementEntry) UnmarshalYAML(value *yaml.Node) error {
	*e = RequirementEntry{}

	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() != "!!str" {
			return entryError(value, fmt.Sprintf("requirement %q must be a string", value.Value))
		}
		e.Spec = value.Value
		return nil
	case yaml.MappingNode:
		if key := unknownKey(value, entryKeys); key != "" {
			return entryError(value, fmt.Sprintf("unknown requirement field %q", key))
		}
		if check := mappingValue(value, "check"); check != nil {
			if check.Kind != yaml.MappingNode {
				return entryError(check, "check must be a mapping with import or command")
			}
			if key := unknownKey(check, checkKeys); key != "" {
				return entryError(check, fmt.Sprintf("unknown check field %q", key))
			}
		}
		type rawEntry RequirementEntry
		var raw rawEntry
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*e = RequirementEntry(raw)
		return nil
	default:
		return entryError(value, "requirement entry must be a string or a mapping")
	}
}

// Checker builds the checker selected by the entry, or nil when it has none.
// python is the interpreter used by import checks.
func (e RequirementEntry) Checker(python string) requirement.Checker {
	switch {
	case e.Check == nil:
		return nil
	case e.Check.Import != "":
		return requirement.ImportChecker{Python: python, Module: e.Check.Import}
	default:
		return requirement.CommandChecker{Command: e.Check.Command, Shell: e.Check.Shell, Env: e.Check.Env}
	}
}

// Registry builds the requirement registry declared by the file, in file order.
func (c *Config) Registry(python string) (*requirement.Registry, error) {
	if c == nil {
		return requirement.NewRegistry()
	}
	entries := make([]requirement.Entry, 0, len(c.Requirements))
	for _, entry := range c.Requirements {
		entries = append(entries, requirement.WithChecker(entry.Spec, entry.Checker(python)))
	}
	return requirement.NewRegistry(entries...)
}

func entryError(node *yaml.Node, message string) error {
	return pyerrors.NewConfigError("requirements", fmt.Sprintf("line %d: %s", node.Line, message), nil)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func unknownKey(node *yaml.Node, known map[string]struct{}) string {
	for i := 0; i < len(node.Content); i += 2 {
		if _, ok := known[node.Content[i].Value]; !ok {
			return node.Content[i].Value
		}
	}
	return ""
}
