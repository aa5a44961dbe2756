package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/chore/internal/execshell"
	"github.com/tyemirov/chore/internal/plan"
	"github.com/tyemirov/chore/internal/runner"
	"github.com/tyemirov/chore/internal/taskfile"
)

type recordingCommandRunner struct {
	executedCommandLines []string
	failures             map[string]execshell.ExecutionResult
	spawnFailures        map[string]error
}

func newRecordingCommandRunner() *recordingCommandRunner {
	return &recordingCommandRunner{
		failures:      map[string]execshell.ExecutionResult{},
		spawnFailures: map[string]error{},
	}
}

func (commandRunner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	commandRunner.executedCommandLines = append(commandRunner.executedCommandLines, command.CommandLine)
	if spawnError, exists := commandRunner.spawnFailures[command.CommandLine]; exists {
		return execshell.ExecutionResult{ExitCode: -1}, spawnError
	}
	if failureResult, exists := commandRunner.failures[command.CommandLine]; exists {
		return failureResult, nil
	}
	return execshell.ExecutionResult{ExitCode: 0}, nil
}

func buildRunnerRegistry(t *testing.T) *taskfile.Registry {
	t.Helper()

	registry := taskfile.NewRegistry("default")
	definitions := []taskfile.TaskDefinition{
		{Name: "fmt", Commands: []string{"cargo fmt"}},
		{Name: "lint", Dependencies: []string{"fmt"}, Commands: []string{"cargo clippy"}},
		{Name: "check", Dependencies: []string{"fmt", "lint"}, Commands: []string{"cargo check"}},
		{Name: "default", Dependencies: []string{"lint", "check"}, Commands: []string{"cargo test", "cargo doc"}},
	}
	for _, definition := range definitions {
		require.NoError(t, registry.Register(definition))
	}
	return registry
}

func TestNewRunnerRequiresRegistry(t *testing.T) {
	_, constructionError := runner.NewRunner(runner.Dependencies{})
	require.ErrorIs(t, constructionError, runner.ErrRegistryMissing)
}

func TestRunExecutesPlanInDependencyOrder(t *testing.T) {
	commandRunner := newRecordingCommandRunner()
	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Logger:        zap.NewNop(),
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "default")
	require.NoError(t, runError)
	require.Equal(t, runner.PhaseDone, outcome.Phase)
	require.Equal(t, 0, outcome.ExitCode)
	require.Equal(t, []string{"fmt", "lint", "check", "default"}, outcome.Plan.TaskNames)
	require.Equal(t,
		[]string{"cargo fmt", "cargo clippy", "cargo check", "cargo test", "cargo doc"},
		commandRunner.executedCommandLines,
	)
	require.Len(t, outcome.TaskOutcomes, 4)
	require.Equal(t, 2, outcome.TaskOutcomes[3].CommandsRun)
}

func TestRunUsesDefaultTaskForEmptyRequest(t *testing.T) {
	commandRunner := newRecordingCommandRunner()
	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "")
	require.NoError(t, runError)
	require.Equal(t, "default", outcome.RequestedTask)
	require.Equal(t, runner.PhaseDone, outcome.Phase)
}

func TestRunFailsWhenNoDefaultTaskConfigured(t *testing.T) {
	registry := taskfile.NewRegistry("")
	require.NoError(t, registry.Register(taskfile.TaskDefinition{Name: "build", Commands: []string{"make"}}))

	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      registry,
		CommandRunner: newRecordingCommandRunner(),
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "")
	require.Equal(t, runner.PhaseFailed, outcome.Phase)
	require.Equal(t, 1, outcome.ExitCode)
	require.ErrorIs(t, runError, taskfile.ErrNoDefaultTask)
}

func TestRunStopsAtFirstFailingCommand(t *testing.T) {
	commandRunner := newRecordingCommandRunner()
	commandRunner.failures["cargo clippy"] = execshell.ExecutionResult{
		StandardError: "warnings found",
		ExitCode:      2,
	}

	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "default")
	require.Equal(t, runner.PhaseFailed, outcome.Phase)
	require.Equal(t, "lint", outcome.FailedTaskName)
	require.Equal(t, "cargo clippy", outcome.FailedCommandLine)
	require.Equal(t, 2, outcome.ExitCode)

	require.Equal(t, []string{"cargo fmt", "cargo clippy"}, commandRunner.executedCommandLines)

	var exitCodeError runner.ExitCodeError
	require.ErrorAs(t, runError, &exitCodeError)
	require.Equal(t, 2, exitCodeError.Code)

	var failedError execshell.CommandFailedError
	require.ErrorAs(t, runError, &failedError)
	require.Equal(t, 2, failedError.Result.ExitCode)
}

func TestRunStopsWithinMultiCommandTask(t *testing.T) {
	commandRunner := newRecordingCommandRunner()
	commandRunner.failures["cargo test"] = execshell.ExecutionResult{ExitCode: 101}

	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "default")
	require.Error(t, runError)
	require.Equal(t, 101, outcome.ExitCode)

	require.NotContains(t, commandRunner.executedCommandLines, "cargo doc")

	lastTaskOutcome := outcome.TaskOutcomes[len(outcome.TaskOutcomes)-1]
	require.Equal(t, "default", lastTaskOutcome.TaskName)
	require.True(t, lastTaskOutcome.Failed)
	require.Equal(t, 0, lastTaskOutcome.CommandsRun)
	require.Equal(t, "cargo test", lastTaskOutcome.FailedCommandLine)
}

func TestRunReportsUnknownTaskWithoutExecuting(t *testing.T) {
	commandRunner := newRecordingCommandRunner()
	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "deploy")
	require.Equal(t, runner.PhaseFailed, outcome.Phase)
	require.Equal(t, 1, outcome.ExitCode)
	require.Empty(t, commandRunner.executedCommandLines)

	var unknownError taskfile.UnknownTaskError
	require.ErrorAs(t, runError, &unknownError)
	require.Equal(t, "deploy", unknownError.TaskName)
}

func TestRunReportsDependencyCycleWithoutExecuting(t *testing.T) {
	registry := taskfile.NewRegistry("")
	require.NoError(t, registry.Register(taskfile.TaskDefinition{Name: "a", Dependencies: []string{"b"}, Commands: []string{"true"}}))
	require.NoError(t, registry.Register(taskfile.TaskDefinition{Name: "b", Dependencies: []string{"a"}, Commands: []string{"true"}}))

	commandRunner := newRecordingCommandRunner()
	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      registry,
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "a")
	require.Equal(t, runner.PhaseFailed, outcome.Phase)
	require.Empty(t, commandRunner.executedCommandLines)

	var cycleError plan.CyclicDependencyError
	require.ErrorAs(t, runError, &cycleError)
}

func TestRunUsesGenericExitCodeForSpawnFailures(t *testing.T) {
	spawnFailure := errors.New("sh: command not found")
	commandRunner := newRecordingCommandRunner()
	commandRunner.spawnFailures["cargo fmt"] = spawnFailure

	taskRunner, constructionError := runner.NewRunner(runner.Dependencies{
		Registry:      buildRunnerRegistry(t),
		CommandRunner: commandRunner,
	})
	require.NoError(t, constructionError)

	outcome, runError := taskRunner.Run(context.Background(), "fmt")
	require.Equal(t, runner.PhaseFailed, outcome.Phase)
	require.Equal(t, 1, outcome.ExitCode)
	require.ErrorIs(t, runError, spawnFailure)
}
