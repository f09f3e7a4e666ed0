package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// EnvPrefix prefixes the environment variables that override settings,
// e.g. PYREQS_PYTHON or PYREQS_MIN_PIP_VERSION.
const EnvPrefix = "PYREQS"

// Settings tunes how pip is located and invoked.
type Settings struct {
	Python        string   `mapstructure:"python" validate:"required"`
	PreferBinary  bool     `mapstructure:"prefer_binary"`
	IndexURL      string   `mapstructure:"index_url" validate:"omitempty,url"`
	ExtraArgs     []string `mapstructure:"extra_args"`
	Bootstrap     bool     `mapstructure:"bootstrap"`
	MinPipVersion string   `mapstructure:"min_pip_version" validate:"omitempty,pip_constraint"`
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		Python:       "python3",
		PreferBinary: true,
		Bootstrap:    true,
	}
}

// settingFlags maps setting keys to the CLI flags that override them.
var settingFlags = map[string]string{
	"python":          "python",
	"prefer_binary":   "prefer-binary",
	"index_url":       "index-url",
	"extra_args":      "pip-arg",
	"bootstrap":       "bootstrap",
	"min_pip_version": "min-pip-version",
}

// RegisterFlags adds the setting override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := DefaultSettings()
	fs.String("python", defaults.Python, "Python interpreter used to run pip")
	fs.Bool("prefer-binary", defaults.PreferBinary, "Pass --prefer-binary to pip install")
	fs.String("index-url", "", "Package index URL passed to pip install")
	fs.StringSlice("pip-arg", nil, "Extra argument for pip install (repeatable)")
	fs.Bool("bootstrap", defaults.Bootstrap, "Run ensurepip when pip is missing")
	fs.String("min-pip-version", "", "Semver constraint pip must satisfy, e.g. \">=21.0\"")
}

// LoadSettings layers defaults, the file's settings block, PYREQS_* environment
// variables and changed flags, in increasing precedence. fs may be nil.
func LoadSettings(file map[string]any, fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("python", defaults.Python)
	v.SetDefault("prefer_binary", defaults.PreferBinary)
	v.SetDefault("index_url", defaults.IndexURL)
	v.SetDefault("extra_args", defaults.ExtraArgs)
	v.SetDefault("bootstrap", defaults.Bootstrap)
	v.SetDefault("min_pip_version", defaults.MinPipVersion)

	if len(file) > 0 {
		if unknown := unknownSettings(file); len(unknown) > 0 {
			return Settings{}, pyerrors.NewConfigError("settings", fmt.Sprintf("unknown settings %s", strings.Join(unknown, ", ")), nil)
		}
		if err := v.MergeConfigMap(file); err != nil {
			return Settings{}, pyerrors.NewConfigError("settings", "could not merge settings", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range settingFlags {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Settings{}, pyerrors.NewConfigError("settings."+key, "could not bind flag --"+name, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, pyerrors.NewConfigError("settings", "could not decode settings", err)
	}
	s.Python = strings.TrimSpace(s.Python)

	if err := ValidateSettings(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func unknownSettings(file map[string]any) []string {
	var unknown []string
	for key := range file {
		if _, ok := settingFlags[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
