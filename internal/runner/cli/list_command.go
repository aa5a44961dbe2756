package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	listCommandUseConstant              = "list"
	listCommandShortDescriptionConstant = "List the tasks defined in the taskfile"
	listCommandLongDescriptionConstant  = "Prints every task in declaration order with its dependencies and command count. The default task is marked with an asterisk."
	listEntryTemplateConstant           = "%s%s  (%d command%s)%s\n"
	listDefaultMarkerConstant           = "*"
	listDependenciesTemplateConstant    = "  needs: %s"
	pluralSuffixConstant                = "s"
)

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	RegistryLoader RegistryLoader
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	taskfilePath := resolveTaskfilePath(command)

	registryLoader := resolveRegistryLoader(builder.RegistryLoader)
	taskRegistry, loadError := registryLoader(taskfilePath)
	if loadError != nil {
		return loadError
	}

	defaultTaskName, defaultTaskError := taskRegistry.DefaultTaskName()
	if defaultTaskError != nil {
		defaultTaskName = ""
	}

	outputWriter := command.OutOrStdout()
	for _, taskName := range taskRegistry.TaskNames() {
		definition, lookupError := taskRegistry.Lookup(taskName)
		if lookupError != nil {
			return lookupError
		}

		defaultMarker := ""
		if taskName == defaultTaskName {
			defaultMarker = listDefaultMarkerConstant
		}

		pluralSuffix := pluralSuffixConstant
		if definition.CommandCount() == 1 {
			pluralSuffix = ""
		}

		dependenciesSummary := ""
		if len(definition.Dependencies) > 0 {
			dependenciesSummary = fmt.Sprintf(listDependenciesTemplateConstant, strings.Join(definition.Dependencies, ", "))
		}

		fmt.Fprintf(outputWriter, listEntryTemplateConstant, taskName, defaultMarker, definition.CommandCount(), pluralSuffix, dependenciesSummary)
	}

	return nil
}
