package main

import (
	"errors"
	"fmt"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

const (
	exitOK          = 0
	exitUnsatisfied = 1
	exitConfig      = 2
	exitEnvironment = 3
)

// unsatisfiedError reports requirements left unmet; it carries no cause.
type unsatisfiedError struct {
	specs []string
}

func (e *unsatisfiedError) Error() string {
	return fmt.Sprintf("%d requirement(s) not satisfied: %v", len(e.specs), e.specs)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var (
		unsatisfied *unsatisfiedError
		parseErr    *pyerrors.ParseError
		versionErr  *pyerrors.UnparseableVersionError
		configErr   *pyerrors.ConfigError
		toolErr     *pyerrors.ToolUnavailableError
		probeErr    *pyerrors.ProbeError
	)

	switch {
	case errors.As(err, &unsatisfied):
		return exitUnsatisfied
	case errors.As(err, &parseErr), errors.As(err, &versionErr), errors.As(err, &configErr):
		return exitConfig
	case errors.As(err, &toolErr), errors.As(err, &probeErr):
		return exitEnvironment
	default:
		return exitUnsatisfied
	}
}
