package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

const (
	shellExecutableNameConstant     = "sh"
	shellCommandFlagConstant        = "-c"
	environmentEntrySeparatorChar   = "="
	genericSpawnFailureExitConstant = -1
)

// OSCommandRunner executes shell commands through the operating system shell.
// Commands inherit the process environment and working directory unless the
// command declares overrides.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner instance.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run spawns `sh -c <command line>` and captures its observable results. The
// command runs to natural completion; no timeout is imposed here.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	osCommand := exec.CommandContext(executionContext, shellExecutableNameConstant, shellCommandFlagConstant, command.CommandLine)

	if len(command.WorkingDirectory) > 0 {
		osCommand.Dir = command.WorkingDirectory
	}

	if len(command.EnvironmentVariables) > 0 {
		environment := os.Environ()
		for environmentKey, environmentValue := range command.EnvironmentVariables {
			environment = append(environment, environmentKey+environmentEntrySeparatorChar+environmentValue)
		}
		osCommand.Env = environment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	osCommand.Stdout = &standardOutputBuffer
	osCommand.Stderr = &standardErrorBuffer

	runError := osCommand.Run()

	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			executionResult.ExitCode = exitError.ExitCode()
			return executionResult, nil
		}
		executionResult.ExitCode = genericSpawnFailureExitConstant
		return executionResult, runError
	}

	executionResult.ExitCode = 0
	return executionResult, nil
}
