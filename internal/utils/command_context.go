package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	taskfilePathContextKeyConstant          = commandContextKey("taskfilePath")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// WithTaskfilePath attaches the taskfile path to the provided context when a value is present.
func (accessor CommandContextAccessor) WithTaskfilePath(parentContext context.Context, taskfilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedTaskfilePath := strings.TrimSpace(taskfilePath)
	if len(trimmedTaskfilePath) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, taskfilePathContextKeyConstant, trimmedTaskfilePath)
}

// WithLogLevel attaches the effective log level to the provided context.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedLogLevel := strings.TrimSpace(logLevel)
	if len(trimmedLogLevel) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, logLevelContextKeyConstant, trimmedLogLevel)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// TaskfilePath extracts the taskfile path from the provided context.
func (accessor CommandContextAccessor) TaskfilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	taskfilePath, taskfilePathAvailable := executionContext.Value(taskfilePathContextKeyConstant).(string)
	if !taskfilePathAvailable {
		return "", false
	}
	return taskfilePath, true
}

// LogLevel extracts the effective log level from the provided context.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(logLevelContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}
