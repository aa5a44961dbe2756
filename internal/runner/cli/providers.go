// Package cli assembles the Cobra commands that expose the task runner.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/chore/internal/taskfile"
	"github.com/tyemirov/chore/internal/utils"
	flagutils "github.com/tyemirov/chore/internal/utils/flags"
)

const (
	// DefaultTaskfileName is the taskfile consulted when no path is provided.
	DefaultTaskfileName = "chore.yaml"
)

// LoggerProvider supplies the logger configured by the application shell.
type LoggerProvider func() *zap.Logger

// RegistryLoader builds a task registry from a taskfile path.
type RegistryLoader func(taskfilePath string) (*taskfile.Registry, error)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveRegistryLoader(loader RegistryLoader) RegistryLoader {
	if loader != nil {
		return loader
	}
	return taskfile.LoadTaskfile
}

func resolveHumanReadableLogging(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

// resolveTaskfilePath selects the taskfile path from the command flag, the
// command context, or the default taskfile name, in that order.
func resolveTaskfilePath(command *cobra.Command) string {
	if flagValue, flagChanged, flagError := flagutils.StringFlag(command, flagutils.TaskfileFlagName); flagError == nil {
		trimmedFlagValue := strings.TrimSpace(flagValue)
		if flagChanged && len(trimmedFlagValue) > 0 {
			return trimmedFlagValue
		}
	}

	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if taskfilePath, taskfilePathAvailable := contextAccessor.TaskfilePath(command.Context()); taskfilePathAvailable {
			trimmedTaskfilePath := strings.TrimSpace(taskfilePath)
			if len(trimmedTaskfilePath) > 0 {
				return trimmedTaskfilePath
			}
		}
	}

	return DefaultTaskfileName
}

func requestedTaskName(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return strings.TrimSpace(arguments[0])
}
