package cli

import (
	"github.com/spf13/cobra"

	"github.com/tyemirov/chore/internal/execshell"
	"github.com/tyemirov/chore/internal/runner"
)

const (
	runCommandUseConstant              = "run [task-name]"
	runCommandShortDescriptionConstant = "Run a task and everything it depends on"
	runCommandLongDescriptionConstant  = "Resolves the requested task's dependency closure into a sequential plan and executes every command, stopping at the first failure. Without a task name the taskfile's default task runs."
)

// RunCommandBuilder assembles the run command backed by the task runner.
type RunCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	RegistryLoader               RegistryLoader
	CommandRunner                execshell.CommandRunner
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.Run,
	}
	return command, nil
}

// Run loads the taskfile and executes the requested task. It backs both the
// run subcommand and the bare root invocation.
func (builder *RunCommandBuilder) Run(command *cobra.Command, arguments []string) error {
	taskfilePath := resolveTaskfilePath(command)

	registryLoader := resolveRegistryLoader(builder.RegistryLoader)
	taskRegistry, loadError := registryLoader(taskfilePath)
	if loadError != nil {
		return loadError
	}

	taskRunner, runnerError := runner.NewRunner(runner.Dependencies{
		Logger:               resolveLogger(builder.LoggerProvider),
		Registry:             taskRegistry,
		CommandRunner:        builder.CommandRunner,
		HumanReadableLogging: resolveHumanReadableLogging(builder.HumanReadableLoggingProvider),
	})
	if runnerError != nil {
		return runnerError
	}

	_, runError := taskRunner.Run(command.Context(), requestedTaskName(arguments))
	return runError
}
