package runner

import (
	"fmt"
	"time"

	"github.com/tyemirov/chore/internal/plan"
)

// Phase identifies a state of the run state machine.
type Phase string

// Run phases. A run moves Idle -> Resolving -> Executing and terminates in
// Done or Failed; resolution failures skip Executing entirely.
const (
	PhaseIdle      Phase = "idle"
	PhaseResolving Phase = "resolving"
	PhaseExecuting Phase = "executing"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// TaskOutcome reports the execution status for a single task.
type TaskOutcome struct {
	TaskName          string
	Duration          time.Duration
	CommandsRun       int
	Failed            bool
	FailedCommandLine string
	Error             error
}

// RunOutcome captures aggregated run results for one invocation.
type RunOutcome struct {
	Phase             Phase
	RequestedTask     string
	Plan              plan.ExecutionPlan
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
	TaskOutcomes      []TaskOutcome
	FailedTaskName    string
	FailedCommandLine string
	ExitCode          int
	Error             error
}

const exitCodeErrorTemplateConstant = "run failed with exit code %d"

// ExitCodeError carries the process exit status for a failed run.
type ExitCodeError struct {
	Code  int
	Cause error
}

// Error describes the failure with its exit status.
func (errorDetails ExitCodeError) Error() string {
	if errorDetails.Cause != nil {
		return errorDetails.Cause.Error()
	}
	return fmt.Sprintf(exitCodeErrorTemplateConstant, errorDetails.Code)
}

// Unwrap exposes the underlying error.
func (errorDetails ExitCodeError) Unwrap() error {
	return errorDetails.Cause
}
