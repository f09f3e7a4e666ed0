package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePython keeps "name version" lines in $dir/installed; install appends to it.
const fakePython = `#!/bin/sh
dir="$(dirname "$0")"
case "$3" in
  --version) echo "pip 24.0 from /site-packages/pip (python 3.12)" ;;
  list)
    printf '['
    sep=''
    while read -r name ver; do
      printf '%s{"name": "%s", "version": "%s"}' "$sep" "$name" "$ver"
      sep=', '
    done < "$dir/installed"
    echo ']'
    ;;
  install)
    for last; do :; done
    name="${last%%[<>=]*}"
    echo "Collecting $name"
    case "$name" in
      broken*)
        echo "ERROR: No matching distribution found for $last" >&2
        exit 1
        ;;
    esac
    echo "$name 1.0.0" >> "$dir/installed"
    echo "Successfully installed $name-1.0.0"
    ;;
esac
`

type fixture struct {
	dir    string
	python string
	file   string
}

func newFixture(t *testing.T, installed, requirements string) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		python: filepath.Join(dir, "python"),
		file:   filepath.Join(dir, "pyreqs.yaml"),
	}
	require.NoError(t, os.WriteFile(f.python, []byte(fakePython), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "installed"), []byte(installed), 0o644))
	if requirements != "" {
		require.NoError(t, os.WriteFile(f.file, []byte(requirements), 0o600))
	}
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"--file", f.file, "--python", f.python}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
