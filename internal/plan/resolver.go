// Package plan computes dependency-respecting execution orders for tasks.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/chore/internal/taskfile"
)

const (
	cyclicDependencyErrorTemplateConstant = "tasks contain a dependency cycle: %s"
	cyclePathSeparatorConstant            = " -> "
	registryMissingMessageConstant        = "task registry must be provided"
	requestedTaskMissingMessageConstant   = "requested task name must be provided"
)

// ErrRegistryMissing indicates the resolver was invoked without a registry.
var ErrRegistryMissing = errors.New(registryMissingMessageConstant)

// ErrRequestedTaskMissing indicates resolution was requested for a blank task name.
var ErrRequestedTaskMissing = errors.New(requestedTaskMissingMessageConstant)

// CyclicDependencyError reports a dependency cycle reachable from the requested task.
type CyclicDependencyError struct {
	Cycle []string
}

// Error implements the error interface, naming the offending cycle.
func (errorDetails CyclicDependencyError) Error() string {
	return fmt.Sprintf(cyclicDependencyErrorTemplateConstant, strings.Join(errorDetails.Cycle, cyclePathSeparatorConstant))
}

// ExecutionPlan is the ordered, duplicate-free sequence of task names for one invocation.
type ExecutionPlan struct {
	TaskNames []string
}

// Contains reports whether the plan includes the provided task name.
func (executionPlan ExecutionPlan) Contains(taskName string) bool {
	for _, planTaskName := range executionPlan.TaskNames {
		if planTaskName == taskName {
			return true
		}
	}
	return false
}

// Resolve computes the execution plan for the requested task. Dependencies are
// visited depth-first in declared order, each task recorded the first time its
// dependencies complete, so shared dependencies execute exactly once.
func Resolve(registry *taskfile.Registry, requestedTaskName string) (ExecutionPlan, error) {
	if registry == nil {
		return ExecutionPlan{}, ErrRegistryMissing
	}

	trimmedTaskName := strings.TrimSpace(requestedTaskName)
	if len(trimmedTaskName) == 0 {
		return ExecutionPlan{}, ErrRequestedTaskMissing
	}

	resolution := &resolutionState{
		registry: registry,
		visiting: make(map[string]struct{}),
		resolved: make(map[string]struct{}),
	}

	if traversalError := resolution.visit(trimmedTaskName); traversalError != nil {
		return ExecutionPlan{}, traversalError
	}

	return ExecutionPlan{TaskNames: resolution.orderedTaskNames}, nil
}

type resolutionState struct {
	registry         *taskfile.Registry
	visiting         map[string]struct{}
	resolved         map[string]struct{}
	visitStack       []string
	orderedTaskNames []string
}

func (resolution *resolutionState) visit(taskName string) error {
	if _, alreadyResolved := resolution.resolved[taskName]; alreadyResolved {
		return nil
	}

	if _, currentlyVisiting := resolution.visiting[taskName]; currentlyVisiting {
		return CyclicDependencyError{Cycle: resolution.cyclePath(taskName)}
	}

	definition, lookupError := resolution.registry.Lookup(taskName)
	if lookupError != nil {
		return lookupError
	}

	resolution.visiting[taskName] = struct{}{}
	resolution.visitStack = append(resolution.visitStack, taskName)

	for _, dependencyName := range definition.Dependencies {
		if dependencyError := resolution.visit(dependencyName); dependencyError != nil {
			return dependencyError
		}
	}

	resolution.visitStack = resolution.visitStack[:len(resolution.visitStack)-1]
	delete(resolution.visiting, taskName)

	resolution.resolved[taskName] = struct{}{}
	resolution.orderedTaskNames = append(resolution.orderedTaskNames, taskName)
	return nil
}

func (resolution *resolutionState) cyclePath(repeatedTaskName string) []string {
	cycleStartIndex := 0
	for stackIndex, stackTaskName := range resolution.visitStack {
		if stackTaskName == repeatedTaskName {
			cycleStartIndex = stackIndex
			break
		}
	}

	cyclePath := make([]string, 0, len(resolution.visitStack)-cycleStartIndex+1)
	cyclePath = append(cyclePath, resolution.visitStack[cycleStartIndex:]...)
	cyclePath = append(cyclePath, repeatedTaskName)
	return cyclePath
}
