package requirement

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ImportChecker treats a package as usable when the interpreter can import Module.
type ImportChecker struct {
	Python string
	// Module defaults to the package name with dashes replaced by underscores.
	Module string
}

// Check runs `python -c "import module"`.
func (c ImportChecker) Check(ctx context.Context, name string) (bool, error) {
	module := c.Module
	if module == "" {
		module = strings.ReplaceAll(name, "-", "_")
	}
	python := c.Python
	if python == "" {
		python = "python3"
	}

	cmd := exec.CommandContext(ctx, python, "-c", "import "+module)
	cmd.Env = os.Environ()
	return exitStatusOK(cmd)
}

// CommandChecker treats a package as usable when a shell command exits 0.
type CommandChecker struct {
	Command string
	Shell   string
	Env     map[string]string
}

// Check runs the command through the configured shell. The package name is
// exported to the command as PYREQS_PACKAGE.
func (c CommandChecker) Check(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(c.Command) == "" {
		return false, fmt.Errorf("check command is empty")
	}

	shell, shellArgs, err := determineShell(c.Shell)
	if err != nil {
		return false, err
	}

	args := append(shellArgs, c.Command)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Env = buildEnv(c.Env, name)
	return exitStatusOK(cmd)
}

// A non-zero exit means "not installed"; only a failure to run the command is an error.
func exitStatusOK(cmd *exec.Cmd) (bool, error) {
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		if len(output) > 0 {
			return false, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
		}
		return false, err
	}
	return true, nil
}

func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}

func buildEnv(custom map[string]string, name string) []string {
	env := os.Environ()
	env = append(env, "PYREQS_PACKAGE="+name)
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
