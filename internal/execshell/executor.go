// Package execshell runs opaque shell command lines and reports their outcomes.
package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandLineMissingMessageConstant         = "shell command line not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandLineFieldNameConstant              = "command"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
)

// ShellCommand represents a fully qualified command invocation. The command
// line is opaque: it is handed to the shell verbatim and never interpreted.
type ShellCommand struct {
	CommandLine          string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandLineMissing indicates the command line was not provided.
	ErrCommandLineMissing = errors.New(commandLineMissingMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const commandFailureErrorMessageTemplateConstant = "command %q exited with code %d"

// Error describes the failure in a readable format.
func (commandError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.CommandLine, commandError.Result.ExitCode)

	detail := strings.TrimSpace(commandError.Result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(commandError.Result.StandardOutput)
	}
	if len(detail) > 0 {
		lines := strings.Split(detail, "\n")
		maxLines := 3
		if len(lines) > maxLines {
			lines = lines[:maxLines]
		}
		normalized := make([]string, 0, len(lines))
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			normalized = append(normalized, trimmed)
		}
		if len(normalized) > 0 {
			baseMessage = fmt.Sprintf("%s: %s", baseMessage, strings.Join(normalized, " | "))
		}
	}

	return baseMessage
}

// CommandExecutionError wraps unexpected execution failures from the runner.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "command %q execution failed"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.CommandLine)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// Execute runs the provided shell command and logs lifecycle events. A
// non-zero exit status is returned as CommandFailedError; spawn failures are
// wrapped in CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(command.CommandLine)) == 0 {
		return ExecutionResult{}, ErrCommandLineMissing
	}

	if executor.humanReadableLogging {
		executor.logger.Info(fmt.Sprintf("$ %s", command.CommandLine))
	} else {
		executor.logger.Info(commandStartMessageConstant,
			zap.String(commandLineFieldNameConstant, command.CommandLine),
			zap.String(workingDirectoryFieldNameConstant, command.WorkingDirectory),
		)
	}

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	if runnerError != nil {
		if executor.humanReadableLogging {
			executor.logger.Error(fmt.Sprintf("%s: %v", command.CommandLine, runnerError))
		} else {
			executor.logger.Error(commandRunnerErrorMessageConstant,
				zap.String(commandLineFieldNameConstant, command.CommandLine),
				zap.Error(runnerError),
			)
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	}

	if executionResult.ExitCode != 0 {
		if executor.humanReadableLogging {
			executor.logger.Warn(fmt.Sprintf("%s exited with code %d", command.CommandLine, executionResult.ExitCode))
		} else {
			executor.logger.Warn(commandFailureMessageConstant,
				zap.String(commandLineFieldNameConstant, command.CommandLine),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
			)
		}
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	if !executor.humanReadableLogging {
		executor.logger.Info(commandSuccessMessageConstant,
			zap.String(commandLineFieldNameConstant, command.CommandLine),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
		)
	}
	return executionResult, nil
}
