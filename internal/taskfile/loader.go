package taskfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	taskfileLoadErrorTemplateConstant       = "failed to load taskfile: %w"
	taskfileParseErrorTemplateConstant      = "failed to parse taskfile: %w"
	taskfilePathRequiredMessageConstant     = "taskfile path must be provided"
	taskfileEmptyTasksMessageConstant       = "taskfile must define at least one task"
	taskfileTasksSequenceMessageConstant    = "tasks block must be defined as a sequence of task entries"
	taskfileBlankCommandTemplateConstant    = "task %q declares a blank command"
	taskfileBlankDependencyTemplateConstant         = "task %q declares a blank dependency name"
	taskfileRegisterErrorTemplateConstant   = "failed to register task: %w"
	taskfileDefaultUnknownTemplateConstant  = "default task %q is not defined"
)

type taskfileDocument struct {
	Default string             `yaml:"default" json:"default"`
	Tasks   []taskEntryWrapper `yaml:"tasks" json:"tasks"`
}

type taskEntryWrapper struct {
	Task taskEntry `yaml:"task" json:"task"`
}

type taskEntry struct {
	Name                 string            `yaml:"name" json:"name"`
	Needs                []string          `yaml:"needs" json:"needs"`
	Commands             []string          `yaml:"commands" json:"commands"`
	WorkingDirectory     string            `yaml:"working_directory" json:"working_directory"`
	EnvironmentVariables map[string]string `yaml:"env" json:"env"`
}

// LoadTaskfile reads the taskfile from disk and builds a validated registry.
func LoadTaskfile(filePath string) (*Registry, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(taskfilePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(taskfileLoadErrorTemplateConstant, readError)
	}

	return ParseTaskfile(contentBytes)
}

// ParseTaskfile builds a validated registry from raw taskfile content.
func ParseTaskfile(contentBytes []byte) (*Registry, error) {
	var document taskfileDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(taskfileParseErrorTemplateConstant, unmarshalError)
	}

	if sequenceError := ensureTasksSequence(contentBytes); sequenceError != nil {
		return nil, fmt.Errorf(taskfileParseErrorTemplateConstant, sequenceError)
	}

	if len(document.Tasks) == 0 {
		return nil, errors.New(taskfileEmptyTasksMessageConstant)
	}

	registry := NewRegistry(document.Default)
	for entryIndex := range document.Tasks {
		definition, definitionError := buildTaskDefinition(document.Tasks[entryIndex].Task)
		if definitionError != nil {
			return nil, definitionError
		}
		if registerError := registry.Register(definition); registerError != nil {
			return nil, fmt.Errorf(taskfileRegisterErrorTemplateConstant, registerError)
		}
	}

	if defaultTaskName, defaultError := registry.DefaultTaskName(); defaultError == nil {
		if _, lookupError := registry.Lookup(defaultTaskName); lookupError != nil {
			return nil, fmt.Errorf(taskfileDefaultUnknownTemplateConstant, defaultTaskName)
		}
	}

	return registry, nil
}

func buildTaskDefinition(entry taskEntry) (TaskDefinition, error) {
	trimmedName := strings.TrimSpace(entry.Name)

	dependencies := make([]string, 0, len(entry.Needs))
	for dependencyIndex := range entry.Needs {
		dependencyName := strings.TrimSpace(entry.Needs[dependencyIndex])
		if len(dependencyName) == 0 {
			return TaskDefinition{}, fmt.Errorf(taskfileBlankDependencyTemplateConstant, trimmedName)
		}
		dependencies = append(dependencies, dependencyName)
	}

	commands := make([]string, 0, len(entry.Commands))
	for commandIndex := range entry.Commands {
		commandLine := strings.TrimSpace(entry.Commands[commandIndex])
		if len(commandLine) == 0 {
			return TaskDefinition{}, fmt.Errorf(taskfileBlankCommandTemplateConstant, trimmedName)
		}
		commands = append(commands, commandLine)
	}

	return TaskDefinition{
		Name:                 trimmedName,
		Dependencies:         dependencies,
		Commands:             commands,
		WorkingDirectory:     strings.TrimSpace(entry.WorkingDirectory),
		EnvironmentVariables: entry.EnvironmentVariables,
	}, nil
}

func ensureTasksSequence(contentBytes []byte) error {
	var tasksWrapper struct {
		Tasks yaml.Node `yaml:"tasks" json:"tasks"`
	}

	if unmarshalError := yaml.Unmarshal(contentBytes, &tasksWrapper); unmarshalError != nil {
		return unmarshalError
	}

	if tasksWrapper.Tasks.Kind == 0 {
		return nil
	}

	switch tasksWrapper.Tasks.Kind {
	case yaml.SequenceNode:
		return nil
	default:
		return errors.New(taskfileTasksSequenceMessageConstant)
	}
}
