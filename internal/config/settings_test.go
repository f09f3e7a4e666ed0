package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(nil, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultSettings().Python, s.Python)
	require.True(t, s.PreferBinary)
	require.True(t, s.Bootstrap)
	require.Empty(t, s.ExtraArgs)
}

func TestLoadSettingsPrecedence(t *testing.T) {
	file := map[string]any{
		"python":          "/opt/venv/bin/python",
		"prefer_binary":   false,
		"extra_args":      []any{"--no-cache-dir"},
		"min_pip_version": ">=20.3",
	}

	t.Run("file overrides defaults", func(t *testing.T) {
		s, err := LoadSettings(file, newFlagSet(t))
		require.NoError(t, err)
		require.Equal(t, "/opt/venv/bin/python", s.Python)
		require.False(t, s.PreferBinary)
		require.Equal(t, []string{"--no-cache-dir"}, s.ExtraArgs)
		require.Equal(t, ">=20.3", s.MinPipVersion)
		require.True(t, s.Bootstrap)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("PYREQS_PYTHON", "/usr/local/bin/python3.12")
		t.Setenv("PYREQS_BOOTSTRAP", "false")
		s, err := LoadSettings(file, newFlagSet(t))
		require.NoError(t, err)
		require.Equal(t, "/usr/local/bin/python3.12", s.Python)
		require.False(t, s.Bootstrap)
	})

	t.Run("changed flags override environment", func(t *testing.T) {
		t.Setenv("PYREQS_PYTHON", "/usr/local/bin/python3.12")
		fs := newFlagSet(t, "--python", "python3.11", "--prefer-binary", "--pip-arg", "--user", "--pip-arg", "--pre")
		s, err := LoadSettings(file, fs)
		require.NoError(t, err)
		require.Equal(t, "python3.11", s.Python)
		require.True(t, s.PreferBinary)
		require.Equal(t, []string{"--user", "--pre"}, s.ExtraArgs)
	})
}

func TestLoadSettingsRejectsBadInput(t *testing.T) {
	var cfgErr *pyerrors.ConfigError

	_, err := LoadSettings(map[string]any{"pyhton": "python3"}, nil)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "settings", cfgErr.Field)
	require.Contains(t, cfgErr.Message, "pyhton")

	_, err = LoadSettings(map[string]any{"min_pip_version": "newest"}, nil)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "min_pip_version", cfgErr.Field)

	_, err = LoadSettings(map[string]any{"index_url": "not a url"}, nil)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "index_url", cfgErr.Field)
}
