package version_test

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/chore/internal/execshell"
	"github.com/tyemirov/chore/internal/version"
)

type stubBuildInfoProvider struct {
	buildInfo *debug.BuildInfo
	available bool
}

func (provider stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return provider.buildInfo, provider.available
}

type stubCommandRunner struct {
	outputsByCommand map[string]string
	runError         error
}

func (runner stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	if runner.runError != nil {
		return execshell.ExecutionResult{ExitCode: -1}, runner.runError
	}
	if output, exists := runner.outputsByCommand[command.CommandLine]; exists {
		return execshell.ExecutionResult{StandardOutput: output, ExitCode: 0}, nil
	}
	return execshell.ExecutionResult{ExitCode: 128}, nil
}

func buildInfoWithVersion(moduleVersion string) *debug.BuildInfo {
	buildInfo := &debug.BuildInfo{}
	buildInfo.Main.Version = moduleVersion
	return buildInfo
}

func TestVersionPrefersBuildInfo(t *testing.T) {
	detector := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{buildInfo: buildInfoWithVersion("v1.4.0"), available: true},
		CommandRunner:     stubCommandRunner{},
		WorkingDirectory:  t.TempDir(),
	})

	require.Equal(t, "v1.4.0", detector.Version(context.Background()))
}

func TestVersionFallsBackToExactGitTag(t *testing.T) {
	detector := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{buildInfo: buildInfoWithVersion("devel"), available: true},
		CommandRunner: stubCommandRunner{outputsByCommand: map[string]string{
			"git describe --tags --exact-match": "v1.3.2\n",
		}},
		WorkingDirectory: t.TempDir(),
	})

	require.Equal(t, "v1.3.2", detector.Version(context.Background()))
}

func TestVersionFallsBackToLongDescription(t *testing.T) {
	detector := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{},
		CommandRunner: stubCommandRunner{outputsByCommand: map[string]string{
			"git describe --tags --long --dirty": "v1.3.2-4-gabc1234-dirty\n",
		}},
		WorkingDirectory: t.TempDir(),
	})

	require.Equal(t, "v1.3.2-4-gabc1234-dirty", detector.Version(context.Background()))
}

func TestVersionReturnsUnknownWhenNothingResolves(t *testing.T) {
	detector := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{},
		CommandRunner:     stubCommandRunner{runError: errors.New("git not installed")},
		WorkingDirectory:  t.TempDir(),
	})

	require.Equal(t, "unknown", detector.Version(context.Background()))
}

func TestDetectUsesProvidedDependencies(t *testing.T) {
	resolvedVersion := version.Detect(context.Background(), version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{buildInfo: buildInfoWithVersion("v2.0.0"), available: true},
		CommandRunner:     stubCommandRunner{},
		WorkingDirectory:  t.TempDir(),
	})

	require.Equal(t, "v2.0.0", resolvedVersion)
}
