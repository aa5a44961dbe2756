package taskrunner

import (
	"fmt"
	"time"

	"github.com/tyemirov/chore/internal/runner"
)

const (
	successSummaryTemplateConstant = "ran %d task(s) in %s"
	failureSummaryTemplateConstant = "task %q failed on %q after %s (exit code %d)"
)

// Summary condenses a run outcome for embedding hosts.
type Summary struct {
	RequestedTask     string
	PlannedTasks      []string
	CompletedTasks    int
	Duration          time.Duration
	Failed            bool
	FailedTask        string
	FailedCommandLine string
	ExitCode          int
}

// NewSummary converts a run outcome into a Summary.
func NewSummary(outcome runner.RunOutcome) Summary {
	completedTasks := 0
	for _, taskOutcome := range outcome.TaskOutcomes {
		if !taskOutcome.Failed {
			completedTasks++
		}
	}

	return Summary{
		RequestedTask:     outcome.RequestedTask,
		PlannedTasks:      outcome.Plan.TaskNames,
		CompletedTasks:    completedTasks,
		Duration:          outcome.Duration,
		Failed:            outcome.Phase == runner.PhaseFailed,
		FailedTask:        outcome.FailedTaskName,
		FailedCommandLine: outcome.FailedCommandLine,
		ExitCode:          outcome.ExitCode,
	}
}

// String renders a single-line human readable summary.
func (summary Summary) String() string {
	if summary.Failed {
		return fmt.Sprintf(
			failureSummaryTemplateConstant,
			summary.FailedTask,
			summary.FailedCommandLine,
			summary.Duration.Round(time.Millisecond),
			summary.ExitCode,
		)
	}
	return fmt.Sprintf(
		successSummaryTemplateConstant,
		summary.CompletedTasks,
		summary.Duration.Round(time.Millisecond),
	)
}
