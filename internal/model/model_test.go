package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
)

func TestEvaluationResultSetSemantics(t *testing.T) {
	t.Parallel()

	reg := requirement.MustNewRegistry(
		requirement.Bare("wheel"),
		requirement.Bare("pyyaml"),
		requirement.Bare("random-word"),
	)
	reqs := reg.Requirements()

	result := NewEvaluationResult()
	require.True(t, result.Empty())

	result.AddMissing(reqs[2])
	result.AddMissing(reqs[0])
	result.AddMissing(reqs[2])
	result.Record(RequirementStatus{Spec: "random-word", Status: StatusMissing})
	result.Record(RequirementStatus{Spec: "pyyaml", Status: StatusSatisfied})
	result.Record(RequirementStatus{Spec: "wheel", Status: StatusMissing})

	require.Equal(t, 2, result.Len())
	require.True(t, result.Contains("wheel"))
	require.False(t, result.Contains("pyyaml"))

	result.SortBy(reg.Position)
	require.Equal(t, []string{"wheel", "random-word"}, result.Specs())

	statuses := result.Statuses()
	require.Len(t, statuses, 3)
	require.Equal(t, "wheel", statuses[0].Spec)
	require.True(t, statuses[1].Satisfied())
}

func TestNilEvaluationResult(t *testing.T) {
	t.Parallel()

	var result *EvaluationResult
	require.True(t, result.Empty())
	require.False(t, result.Contains("wheel"))
	require.Nil(t, result.Missing())
}

func TestZeroValueEvaluationResultAcceptsMembers(t *testing.T) {
	t.Parallel()

	var result EvaluationResult
	result.AddMissing(requirement.MustNewRegistry(requirement.Bare("wheel")).Requirements()[0])
	require.Equal(t, 1, result.Len())
}

func TestInstallReportCounts(t *testing.T) {
	t.Parallel()

	report := &InstallReport{}
	report.Add(InstallResult{Spec: "broken-pkg", Status: InstallFailed, ExitCode: 1, Error: errors.New("exit status 1")})
	report.Add(InstallResult{Spec: "wheel", Status: InstallSucceeded, Duration: time.Second})

	require.Equal(t, 2, report.Attempted())
	require.Equal(t, 1, report.Failed())
	require.Equal(t, 1, report.Succeeded())

	var empty *InstallReport
	require.Equal(t, 0, empty.Attempted())
	require.Equal(t, 0, empty.Failed())
}
