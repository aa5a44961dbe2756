package taskfile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	duplicateTaskErrorTemplateConstant = "task %q defined multiple times"
	unknownTaskErrorTemplateConstant   = "task %q is not defined"
	taskNameMissingMessageConstant     = "task name must be provided"
	noDefaultTaskMessageConstant       = "no default task configured"
)

// ErrTaskNameMissing indicates a task was registered without a name.
var ErrTaskNameMissing = errors.New(taskNameMissingMessageConstant)

// ErrNoDefaultTask indicates a run was requested without a task name while the
// taskfile declares no default task.
var ErrNoDefaultTask = errors.New(noDefaultTaskMessageConstant)

// DuplicateTaskError reports a task name registered more than once.
type DuplicateTaskError struct {
	TaskName string
}

// Error implements the error interface.
func (errorDetails DuplicateTaskError) Error() string {
	return fmt.Sprintf(duplicateTaskErrorTemplateConstant, errorDetails.TaskName)
}

// UnknownTaskError reports a requested or referenced task absent from the registry.
type UnknownTaskError struct {
	TaskName string
}

// Error implements the error interface.
func (errorDetails UnknownTaskError) Error() string {
	return fmt.Sprintf(unknownTaskErrorTemplateConstant, errorDetails.TaskName)
}

// Registry stores task definitions for a single run invocation. It is built
// once by the loader and treated as read-only afterwards.
type Registry struct {
	definitions     map[string]TaskDefinition
	declaredOrder   []string
	defaultTaskName string
}

// NewRegistry constructs an empty Registry with the provided default task name.
func NewRegistry(defaultTaskName string) *Registry {
	return &Registry{
		definitions:     make(map[string]TaskDefinition),
		defaultTaskName: strings.TrimSpace(defaultTaskName),
	}
}

// Register stores a task definition, rejecting blank and duplicate names.
func (registry *Registry) Register(definition TaskDefinition) error {
	trimmedName := strings.TrimSpace(definition.Name)
	if len(trimmedName) == 0 {
		return ErrTaskNameMissing
	}
	if _, exists := registry.definitions[trimmedName]; exists {
		return DuplicateTaskError{TaskName: trimmedName}
	}

	definition.Name = trimmedName
	registry.definitions[trimmedName] = definition
	registry.declaredOrder = append(registry.declaredOrder, trimmedName)
	return nil
}

// Lookup returns the definition for the provided task name.
func (registry *Registry) Lookup(taskName string) (TaskDefinition, error) {
	definition, exists := registry.definitions[strings.TrimSpace(taskName)]
	if !exists {
		return TaskDefinition{}, UnknownTaskError{TaskName: strings.TrimSpace(taskName)}
	}
	return definition, nil
}

// DefaultTaskName returns the configured default task name or an error when none exists.
func (registry *Registry) DefaultTaskName() (string, error) {
	if len(registry.defaultTaskName) == 0 {
		return "", ErrNoDefaultTask
	}
	return registry.defaultTaskName, nil
}

// TaskNames returns task names in declaration order.
func (registry *Registry) TaskNames() []string {
	names := make([]string, len(registry.declaredOrder))
	copy(names, registry.declaredOrder)
	return names
}

// Size reports the number of registered tasks.
func (registry *Registry) Size() int {
	return len(registry.definitions)
}
