package model

import (
	"time"
)

// InstallStatus is the outcome of one pip install.
type InstallStatus string

const (
	// InstallSucceeded indicates pip exited 0.
	InstallSucceeded InstallStatus = "success"
	// InstallFailed indicates pip could not be launched or exited non-zero.
	InstallFailed InstallStatus = "failed"
)

// InstallResult captures one attempted installation.
type InstallResult struct {
	Spec     string
	Status   InstallStatus
	ExitCode int
	Duration time.Duration
	// LastLine is the final line pip printed, usually the most telling one.
	LastLine string
	Error    error
}

// InstallReport lists install attempts in declaration order.
type InstallReport struct {
	Results []InstallResult
}

// Add appends a result.
func (r *InstallReport) Add(result InstallResult) {
	r.Results = append(r.Results, result)
}

// Succeeded returns the number of successful installs.
func (r *InstallReport) Succeeded() int {
	return r.count(InstallSucceeded)
}

// Failed returns the number of failed installs.
func (r *InstallReport) Failed() int {
	return r.count(InstallFailed)
}

// Attempted returns the number of installs attempted.
func (r *InstallReport) Attempted() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}

func (r *InstallReport) count(status InstallStatus) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
