package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/chore/internal/plan"
)

const (
	planCommandUseConstant              = "plan [task-name]"
	planCommandShortDescriptionConstant = "Show the execution plan for a task without running it"
	planCommandLongDescriptionConstant  = "Resolves the requested task's dependency closure and prints the resulting execution order, one task per line. Without a task name the taskfile's default task is planned."
	planEntryTemplateConstant           = "%d. %s\n"
)

// PlanCommandBuilder assembles the plan command.
type PlanCommandBuilder struct {
	RegistryLoader RegistryLoader
}

// Build constructs the plan command.
func (builder *PlanCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   planCommandUseConstant,
		Short: planCommandShortDescriptionConstant,
		Long:  planCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *PlanCommandBuilder) run(command *cobra.Command, arguments []string) error {
	taskfilePath := resolveTaskfilePath(command)

	registryLoader := resolveRegistryLoader(builder.RegistryLoader)
	taskRegistry, loadError := registryLoader(taskfilePath)
	if loadError != nil {
		return loadError
	}

	planTaskName := requestedTaskName(arguments)
	if len(planTaskName) == 0 {
		defaultTaskName, defaultTaskError := taskRegistry.DefaultTaskName()
		if defaultTaskError != nil {
			return defaultTaskError
		}
		planTaskName = defaultTaskName
	}

	executionPlan, resolutionError := plan.Resolve(taskRegistry, planTaskName)
	if resolutionError != nil {
		return resolutionError
	}

	outputWriter := command.OutOrStdout()
	for planIndex, plannedTaskName := range executionPlan.TaskNames {
		fmt.Fprintf(outputWriter, planEntryTemplateConstant, planIndex+1, plannedTaskName)
	}

	return nil
}
