// Package flags provides helpers for reading standardized flags from Cobra commands.
package flags

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// TaskfileFlagName exposes the shared taskfile flag name.
	TaskfileFlagName = "taskfile"
	// TaskfileFlagUsage describes the shared taskfile flag purpose.
	TaskfileFlagUsage = "Path to the taskfile declaring tasks"
)

const boolFlagParseErrorTemplate = "unable to parse flag %q: %w"

// ErrFlagNotDefined indicates that the requested flag is not present on the command.
var ErrFlagNotDefined = errors.New("flag not defined")

// BoolFlag reads a boolean flag from the command hierarchy, reporting whether it changed.
func BoolFlag(command *cobra.Command, name string) (bool, bool, error) {
	flagSet, flag := locateFlag(command, name)
	if flag == nil {
		return false, false, ErrFlagNotDefined
	}
	value, err := flagSet.GetBool(name)
	if err != nil {
		return false, false, fmt.Errorf(boolFlagParseErrorTemplate, name, err)
	}
	return value, flag.Changed, nil
}

// StringFlag reads a string flag from the command hierarchy, reporting whether it changed.
func StringFlag(command *cobra.Command, name string) (string, bool, error) {
	flagSet, flag := locateFlag(command, name)
	if flag == nil {
		return "", false, ErrFlagNotDefined
	}
	value, err := flagSet.GetString(name)
	if err != nil {
		return "", false, err
	}
	return value, flag.Changed, nil
}

func locateFlag(command *cobra.Command, name string) (*pflag.FlagSet, *pflag.Flag) {
	if command == nil {
		return nil, nil
	}

	candidateSets := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if root := command.Root(); root != nil {
		candidateSets = append(candidateSets, root.PersistentFlags())
	}

	for _, set := range candidateSets {
		if set == nil {
			continue
		}
		if flag := set.Lookup(name); flag != nil {
			return set, flag
		}
	}

	return nil, nil
}
