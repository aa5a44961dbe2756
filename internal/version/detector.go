// Package version resolves the application release identifier.
package version

import (
	"context"
	"os"
	"runtime/debug"
	"strings"

	"github.com/tyemirov/chore/internal/execshell"
)

const (
	unknownVersionFallbackConstant   = "unknown"
	buildInfoDevelVersionValue       = "devel"
	gitExactDescribeCommandConstant  = "git describe --tags --exact-match"
	gitLongDescribeCommandConstant   = "git describe --tags --long --dirty"
	gitTerminalPromptEnvironmentName = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue   = "0"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// CommandRunner executes shell commands for git lookups.
type CommandRunner interface {
	Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
	CommandRunner     CommandRunner
	WorkingDirectory  string
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
	commandRunner     CommandRunner
	workingDirectory  string
}

// NewDetector constructs a Detector with the supplied dependencies or sensible defaults.
func NewDetector(dependencies Dependencies) *Detector {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	commandRunner := dependencies.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	workingDirectory := strings.TrimSpace(dependencies.WorkingDirectory)
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError == nil {
			workingDirectory = currentDirectory
		}
	}

	return &Detector{
		buildInfoProvider: provider,
		commandRunner:     commandRunner,
		workingDirectory:  workingDirectory,
	}
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	return NewDetector(dependencies).Version(executionContext)
}

// Version returns the detected application version string. Build metadata wins
// over git tags; development builds fall through to git describe.
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	if buildVersion := detector.versionFromBuildInfo(); len(buildVersion) > 0 {
		return buildVersion
	}

	if exactVersion := detector.describeVersion(executionContext, gitExactDescribeCommandConstant); len(exactVersion) > 0 {
		return exactVersion
	}

	if longVersion := detector.describeVersion(executionContext, gitLongDescribeCommandConstant); len(longVersion) > 0 {
		return longVersion
	}

	return unknownVersionFallbackConstant
}

func (detector *Detector) versionFromBuildInfo() string {
	if detector.buildInfoProvider == nil {
		return ""
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}

	trimmedVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(trimmedVersion) == 0 {
		return ""
	}

	if strings.EqualFold(trimmedVersion, buildInfoDevelVersionValue) {
		return ""
	}

	return trimmedVersion
}

func (detector *Detector) describeVersion(executionContext context.Context, commandLine string) string {
	if detector.commandRunner == nil {
		return ""
	}

	executionResult, executionError := detector.commandRunner.Run(executionContext, execshell.ShellCommand{
		CommandLine:      commandLine,
		WorkingDirectory: detector.workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentName: gitTerminalPromptDisabledValue,
		},
	})
	if executionError != nil || executionResult.ExitCode != 0 {
		return ""
	}

	return strings.TrimSpace(executionResult.StandardOutput)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
