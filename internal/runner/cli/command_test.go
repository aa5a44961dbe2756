package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/chore/internal/execshell"
	runnercli "github.com/tyemirov/chore/internal/runner/cli"
	"github.com/tyemirov/chore/internal/utils"
	flagutils "github.com/tyemirov/chore/internal/utils/flags"
)

const commandTestTaskfileContentConstant = `default: default
tasks:
  - task:
      name: fmt
      commands:
        - cargo fmt
  - task:
      name: lint
      needs:
        - fmt
      commands:
        - cargo clippy
  - task:
      name: default
      needs:
        - lint
      commands:
        - cargo test
`

type commandTestRunner struct {
	executedCommandLines []string
	failures             map[string]execshell.ExecutionResult
}

func (commandRunner *commandTestRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	commandRunner.executedCommandLines = append(commandRunner.executedCommandLines, command.CommandLine)
	if failureResult, exists := commandRunner.failures[command.CommandLine]; exists {
		return failureResult, nil
	}
	return execshell.ExecutionResult{ExitCode: 0}, nil
}

func writeCommandTestTaskfile(t *testing.T) string {
	t.Helper()

	taskfilePath := filepath.Join(t.TempDir(), "chore.yaml")
	require.NoError(t, os.WriteFile(taskfilePath, []byte(commandTestTaskfileContentConstant), 0o644))
	return taskfilePath
}

func prepareCommand(t *testing.T, command *cobra.Command, taskfilePath string) *bytes.Buffer {
	t.Helper()

	command.Flags().String(flagutils.TaskfileFlagName, "", flagutils.TaskfileFlagUsage)
	require.NoError(t, command.Flags().Set(flagutils.TaskfileFlagName, taskfilePath))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetContext(context.Background())
	return outputBuffer
}

func TestRunCommandExecutesRequestedTask(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)
	commandRunner := &commandTestRunner{}

	builder := &runnercli.RunCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		CommandRunner:  commandRunner,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	prepareCommand(t, command, taskfilePath)

	require.NoError(t, command.RunE(command, []string{"lint"}))
	require.Equal(t, []string{"cargo fmt", "cargo clippy"}, commandRunner.executedCommandLines)
}

func TestRunCommandDefaultsToTaskfileDefaultTask(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)
	commandRunner := &commandTestRunner{}

	builder := &runnercli.RunCommandBuilder{CommandRunner: commandRunner}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	prepareCommand(t, command, taskfilePath)

	require.NoError(t, command.RunE(command, nil))
	require.Equal(t, []string{"cargo fmt", "cargo clippy", "cargo test"}, commandRunner.executedCommandLines)
}

func TestRunCommandPropagatesFailures(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)
	commandRunner := &commandTestRunner{
		failures: map[string]execshell.ExecutionResult{
			"cargo clippy": {ExitCode: 2},
		},
	}

	builder := &runnercli.RunCommandBuilder{CommandRunner: commandRunner}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	prepareCommand(t, command, taskfilePath)

	runError := command.RunE(command, []string{"default"})
	require.Error(t, runError)
	require.NotContains(t, commandRunner.executedCommandLines, "cargo test")
}

func TestRunCommandReportsTaskfileLoadFailure(t *testing.T) {
	builder := &runnercli.RunCommandBuilder{CommandRunner: &commandTestRunner{}}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	prepareCommand(t, command, filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, command.RunE(command, nil))
}

func TestRunCommandResolvesTaskfileFromContext(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)
	commandRunner := &commandTestRunner{}

	builder := &runnercli.RunCommandBuilder{CommandRunner: commandRunner}
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	contextAccessor := utils.NewCommandContextAccessor()
	command.SetContext(contextAccessor.WithTaskfilePath(context.Background(), taskfilePath))

	require.NoError(t, command.RunE(command, []string{"fmt"}))
	require.Equal(t, []string{"cargo fmt"}, commandRunner.executedCommandLines)
}

func TestListCommandPrintsTasksInDeclarationOrder(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)

	builder := &runnercli.ListCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	outputBuffer := prepareCommand(t, command, taskfilePath)

	require.NoError(t, command.RunE(command, nil))

	listOutput := outputBuffer.String()
	require.Contains(t, listOutput, "fmt")
	require.Contains(t, listOutput, "lint")
	require.Contains(t, listOutput, "default*")
	require.Contains(t, listOutput, "needs: lint")
	require.Less(t, bytes.Index([]byte(listOutput), []byte("fmt")), bytes.Index([]byte(listOutput), []byte("lint")))
}

func TestPlanCommandPrintsExecutionOrder(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)

	builder := &runnercli.PlanCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	outputBuffer := prepareCommand(t, command, taskfilePath)

	require.NoError(t, command.RunE(command, []string{"default"}))
	require.Equal(t, "1. fmt\n2. lint\n3. default\n", outputBuffer.String())
}

func TestPlanCommandUsesDefaultTaskWhenNoneRequested(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)

	builder := &runnercli.PlanCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	outputBuffer := prepareCommand(t, command, taskfilePath)

	require.NoError(t, command.RunE(command, nil))
	require.Equal(t, "1. fmt\n2. lint\n3. default\n", outputBuffer.String())
}

func TestPlanCommandReportsUnknownTask(t *testing.T) {
	taskfilePath := writeCommandTestTaskfile(t)

	builder := &runnercli.PlanCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	prepareCommand(t, command, taskfilePath)

	require.Error(t, command.RunE(command, []string{"deploy"}))
}
