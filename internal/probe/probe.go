// Package probe talks to pip through the configured Python interpreter: it makes
// sure pip is present, bootstrapping it with ensurepip when needed, and lists
// the installed distributions.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/alexisbeaulieu97/pyreqs/internal/internalexec"
	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/metrics"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// DefaultPython is used when Options.Python is empty.
const DefaultPython = "python3"

var pipVersionPattern = regexp.MustCompile(`^pip (\S+)`)

// Options configures a PipProbe.
type Options struct {
	Python string
	// Bootstrap allows running ensurepip when pip is missing.
	Bootstrap bool
	// MinPipVersion is an optional semver constraint such as ">=20.3".
	MinPipVersion string
}

// listedPackage is one record of `pip list --format json`.
type listedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PipProbe is the pip-backed environment probe. The bootstrapped latch is set
// by the first successful EnsureToolAvailable and never cleared.
type PipProbe struct {
	opts    Options
	log     *logger.Logger
	metrics *metrics.Recorder

	bootstrapped atomic.Bool
	ranEnsurepip atomic.Bool
	pipVersion   atomic.Value
	listCalls    atomic.Int64
}

// New creates a PipProbe. log and rec may be nil.
func New(opts Options, log *logger.Logger, rec *metrics.Recorder) *PipProbe {
	if strings.TrimSpace(opts.Python) == "" {
		opts.Python = DefaultPython
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PipProbe{opts: opts, log: log, metrics: rec}
}

// Python returns the interpreter pip is run with.
func (p *PipProbe) Python() string {
	return p.opts.Python
}

// PipVersion returns the version reported by `pip --version`, once known.
func (p *PipProbe) PipVersion() string {
	v, _ := p.pipVersion.Load().(string)
	return v
}

// ListCalls returns how many times the installed packages were listed.
func (p *PipProbe) ListCalls() int {
	return int(p.listCalls.Load())
}

// PipCommand builds `python -m pip <args>` with the probe's environment.
func (p *PipProbe) PipCommand(ctx context.Context, args ...string) *exec.Cmd {
	return p.moduleCommand(ctx, "pip", args...)
}

func (p *PipProbe) moduleCommand(ctx context.Context, module string, args ...string) *exec.Cmd {
	cmdArgs := append([]string{"-m", module}, args...)
	cmd := exec.CommandContext(ctx, p.opts.Python, cmdArgs...)
	cmd.Env = p.environ()
	return cmd
}

// Once ensurepip has run, pip children no longer inherit PIP_REQ_TRACKER, so
// they track their own builds instead of an outer pip's tracker directory.
func (p *PipProbe) environ() []string {
	env := os.Environ()
	if !p.ranEnsurepip.Load() {
		return env
	}
	filtered := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "PIP_REQ_TRACKER=") {
			continue
		}
		filtered = append(filtered, kv)
	}
	return filtered
}

// EnsureToolAvailable verifies that pip runs under the interpreter, bootstrapping
// it once if allowed. Calls after the first success return immediately.
func (p *PipProbe) EnsureToolAvailable(ctx context.Context) error {
	if p.bootstrapped.Load() {
		return nil
	}

	log := p.log.WithFields(map[string]any{"python": p.opts.Python})

	version, err := p.probePip(ctx)
	if err != nil {
		if !p.opts.Bootstrap {
			return pyerrors.NewToolUnavailableError(p.opts.Python, "pip is not installed and bootstrapping is disabled", err)
		}

		log.Info("Bootstrapping pip with ensurepip")
		res, runErr := internalexec.Capture(p.moduleCommand(ctx, "ensurepip", "--default-pip"))
		if runErr != nil {
			if out := internalexec.PrimaryOutput(res); out != "" {
				runErr = fmt.Errorf("%w: %s", runErr, out)
			}
			return pyerrors.NewToolUnavailableError(p.opts.Python, "ensurepip failed", runErr)
		}
		p.ranEnsurepip.Store(true)

		version, err = p.probePip(ctx)
		if err != nil {
			return pyerrors.NewToolUnavailableError(p.opts.Python, "pip still unavailable after ensurepip", err)
		}
	}

	if err := p.checkMinVersion(version); err != nil {
		return err
	}

	p.pipVersion.Store(version)
	p.bootstrapped.Store(true)
	log.WithFields(map[string]any{"pip": version}).Debug("pip is available")
	return nil
}

func (p *PipProbe) probePip(ctx context.Context) (string, error) {
	res, err := internalexec.Capture(p.PipCommand(ctx, "--version"))
	if err != nil {
		if out := internalexec.PrimaryOutput(res); out != "" {
			return "", fmt.Errorf("%w: %s", err, out)
		}
		return "", err
	}
	if m := pipVersionPattern.FindStringSubmatch(res.Stdout); m != nil {
		return m[1], nil
	}
	return "", nil
}

func (p *PipProbe) checkMinVersion(pipVersion string) error {
	if strings.TrimSpace(p.opts.MinPipVersion) == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(p.opts.MinPipVersion)
	if err != nil {
		return pyerrors.NewConfigError("settings.min_pip_version", "invalid version constraint", err)
	}
	if pipVersion == "" {
		return pyerrors.NewToolUnavailableError(p.opts.Python, "could not determine pip version", nil)
	}
	v, err := semver.NewVersion(pipVersion)
	if err != nil {
		return pyerrors.NewToolUnavailableError(p.opts.Python, fmt.Sprintf("cannot compare pip version %s", pipVersion), err)
	}
	if !constraint.Check(v) {
		return pyerrors.NewToolUnavailableError(p.opts.Python, fmt.Sprintf("pip %s does not satisfy %s", pipVersion, p.opts.MinPipVersion), nil)
	}
	return nil
}

// ListInstalled runs `pip list --format json` and indexes the result.
func (p *PipProbe) ListInstalled(ctx context.Context) (Index, error) {
	p.listCalls.Add(1)
	start := time.Now()
	defer func() { p.metrics.ObserveProbe(time.Since(start)) }()

	res, err := internalexec.Capture(p.PipCommand(ctx, "list", "--format", "json", "--disable-pip-version-check"))
	if err != nil {
		return Index{}, pyerrors.NewProbeError(internalexec.PrimaryOutput(res), err)
	}

	var listed []listedPackage
	if err := json.Unmarshal([]byte(res.Stdout), &listed); err != nil {
		return Index{}, pyerrors.NewProbeError("", fmt.Errorf("decode pip list output: %w", err))
	}

	packages := make(map[string]string, len(listed))
	for _, pkg := range listed {
		if pkg.Name == "" {
			continue
		}
		packages[pkg.Name] = pkg.Version
	}

	p.log.WithFields(map[string]any{"packages": len(packages)}).Debug("Listed installed packages")
	return NewIndex(packages), nil
}
