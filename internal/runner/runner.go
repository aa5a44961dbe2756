// Package runner coordinates task resolution and fail-fast command execution.
package runner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/chore/internal/execshell"
	"github.com/tyemirov/chore/internal/plan"
	"github.com/tyemirov/chore/internal/taskfile"
)

const (
	runnerRegistryMissingMessageConstant = "runner requires a task registry"
	genericFailureExitCodeConstant       = 1
	taskStartMessageConstant             = "task starting"
	taskCompletedMessageConstant         = "task completed"
	taskFailedMessageConstant            = "task failed"
	runResolvedMessageConstant           = "execution plan resolved"
	taskNameFieldConstant                = "task"
	planPositionFieldConstant            = "position"
	planSizeFieldConstant                = "plan_size"
	planTasksFieldConstant               = "plan"
	commandLineFieldConstant             = "command"
	durationFieldConstant                = "duration"
)

// ErrRegistryMissing indicates the runner was constructed without a registry.
var ErrRegistryMissing = errors.New(runnerRegistryMissingMessageConstant)

// Dependencies configures collaborators for run execution.
type Dependencies struct {
	Logger               *zap.Logger
	Registry             *taskfile.Registry
	CommandRunner        execshell.CommandRunner
	HumanReadableLogging bool
}

// Runner resolves a requested task into an execution plan and runs it
// strictly sequentially, halting on the first failure.
type Runner struct {
	logger        *zap.Logger
	registry      *taskfile.Registry
	shellExecutor *execshell.ShellExecutor
}

// NewRunner constructs a Runner from the provided dependencies.
func NewRunner(dependencies Dependencies) (*Runner, error) {
	if dependencies.Registry == nil {
		return nil, ErrRegistryMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := dependencies.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, dependencies.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	return &Runner{
		logger:        logger,
		registry:      dependencies.Registry,
		shellExecutor: shellExecutor,
	}, nil
}

// Run executes the requested task and everything it depends on. An empty task
// name selects the registry's default task. The returned outcome always
// carries a terminal phase; the error mirrors outcome failure details.
func (taskRunner *Runner) Run(executionContext context.Context, requestedTaskName string) (RunOutcome, error) {
	outcome := RunOutcome{Phase: PhaseIdle, StartTime: time.Now()}

	outcome.Phase = PhaseResolving
	resolvedTaskName, defaultError := taskRunner.resolveRequestedTaskName(requestedTaskName)
	if defaultError != nil {
		return taskRunner.failOutcome(outcome, defaultError, genericFailureExitCodeConstant)
	}
	outcome.RequestedTask = resolvedTaskName

	executionPlan, resolutionError := plan.Resolve(taskRunner.registry, resolvedTaskName)
	if resolutionError != nil {
		return taskRunner.failOutcome(outcome, resolutionError, genericFailureExitCodeConstant)
	}
	outcome.Plan = executionPlan

	taskRunner.logger.Debug(runResolvedMessageConstant,
		zap.String(taskNameFieldConstant, resolvedTaskName),
		zap.Strings(planTasksFieldConstant, executionPlan.TaskNames),
	)

	outcome.Phase = PhaseExecuting
	for planIndex, planTaskName := range executionPlan.TaskNames {
		taskOutcome, taskError := taskRunner.runTask(executionContext, planTaskName, planIndex, len(executionPlan.TaskNames))
		outcome.TaskOutcomes = append(outcome.TaskOutcomes, taskOutcome)

		if taskError != nil {
			outcome.FailedTaskName = planTaskName
			outcome.FailedCommandLine = taskOutcome.FailedCommandLine
			return taskRunner.failOutcome(outcome, taskError, commandExitCode(taskError))
		}
	}

	outcome.Phase = PhaseDone
	outcome.EndTime = time.Now()
	outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
	outcome.ExitCode = 0
	return outcome, nil
}

func (taskRunner *Runner) resolveRequestedTaskName(requestedTaskName string) (string, error) {
	if len(requestedTaskName) > 0 {
		return requestedTaskName, nil
	}
	return taskRunner.registry.DefaultTaskName()
}

func (taskRunner *Runner) runTask(executionContext context.Context, taskName string, planIndex int, planSize int) (TaskOutcome, error) {
	taskOutcome := TaskOutcome{TaskName: taskName}
	taskStart := time.Now()

	definition, lookupError := taskRunner.registry.Lookup(taskName)
	if lookupError != nil {
		taskOutcome.Failed = true
		taskOutcome.Error = lookupError
		return taskOutcome, lookupError
	}

	taskRunner.logger.Info(taskStartMessageConstant,
		zap.String(taskNameFieldConstant, taskName),
		zap.Int(planPositionFieldConstant, planIndex+1),
		zap.Int(planSizeFieldConstant, planSize),
	)

	for _, commandLine := range definition.Commands {
		shellCommand := execshell.ShellCommand{
			CommandLine:          commandLine,
			WorkingDirectory:     definition.WorkingDirectory,
			EnvironmentVariables: definition.EnvironmentVariables,
		}

		_, commandError := taskRunner.shellExecutor.Execute(executionContext, shellCommand)
		if commandError != nil {
			taskOutcome.Failed = true
			taskOutcome.FailedCommandLine = commandLine
			taskOutcome.Error = commandError
			taskOutcome.Duration = time.Since(taskStart)

			taskRunner.logger.Error(taskFailedMessageConstant,
				zap.String(taskNameFieldConstant, taskName),
				zap.String(commandLineFieldConstant, commandLine),
				zap.Error(commandError),
			)
			return taskOutcome, commandError
		}
		taskOutcome.CommandsRun++
	}

	taskOutcome.Duration = time.Since(taskStart)
	taskRunner.logger.Info(taskCompletedMessageConstant,
		zap.String(taskNameFieldConstant, taskName),
		zap.Duration(durationFieldConstant, taskOutcome.Duration),
	)
	return taskOutcome, nil
}

func (taskRunner *Runner) failOutcome(outcome RunOutcome, failureError error, exitCode int) (RunOutcome, error) {
	outcome.Phase = PhaseFailed
	outcome.EndTime = time.Now()
	outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
	outcome.Error = failureError
	outcome.ExitCode = exitCode
	return outcome, ExitCodeError{Code: exitCode, Cause: failureError}
}

func commandExitCode(commandError error) int {
	var failedError execshell.CommandFailedError
	if errors.As(commandError, &failedError) && failedError.Result.ExitCode > 0 {
		return failedError.Result.ExitCode
	}
	return genericFailureExitCodeConstant
}
