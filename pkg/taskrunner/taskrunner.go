package taskrunner

import (
	"context"

	"go.uber.org/zap"

	"github.com/tyemirov/chore/internal/execshell"
	"github.com/tyemirov/chore/internal/plan"
	"github.com/tyemirov/chore/internal/runner"
	"github.com/tyemirov/chore/internal/taskfile"
)

// Options configures collaborators for embedded task execution. Zero values
// select the operating system shell runner and a no-op logger.
type Options struct {
	Logger               *zap.Logger
	CommandRunner        execshell.CommandRunner
	HumanReadableLogging bool
}

// Run loads the taskfile at taskfilePath and executes taskName together with
// its dependency closure. An empty taskName selects the taskfile's default
// task. The returned summary is populated for failed runs as well; the error
// carries the process exit status via runner.ExitCodeError.
func Run(executionContext context.Context, taskfilePath string, taskName string, options Options) (Summary, error) {
	registry, loadError := taskfile.LoadTaskfile(taskfilePath)
	if loadError != nil {
		return Summary{}, loadError
	}

	taskRunner, runnerError := runner.NewRunner(runner.Dependencies{
		Logger:               options.Logger,
		Registry:             registry,
		CommandRunner:        options.CommandRunner,
		HumanReadableLogging: options.HumanReadableLogging,
	})
	if runnerError != nil {
		return Summary{}, runnerError
	}

	outcome, runError := taskRunner.Run(executionContext, taskName)
	return NewSummary(outcome), runError
}

// Plan loads the taskfile at taskfilePath and returns the execution order for
// taskName without running anything. An empty taskName selects the taskfile's
// default task.
func Plan(taskfilePath string, taskName string) ([]string, error) {
	registry, loadError := taskfile.LoadTaskfile(taskfilePath)
	if loadError != nil {
		return nil, loadError
	}

	planTaskName := taskName
	if len(planTaskName) == 0 {
		defaultTaskName, defaultError := registry.DefaultTaskName()
		if defaultError != nil {
			return nil, defaultError
		}
		planTaskName = defaultTaskName
	}

	executionPlan, resolutionError := plan.Resolve(registry, planTaskName)
	if resolutionError != nil {
		return nil, resolutionError
	}

	return executionPlan.TaskNames, nil
}
