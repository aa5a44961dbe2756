// Package cli wires the Cobra root command, configuration loader, and structured logger.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	runnercli "github.com/tyemirov/chore/internal/runner/cli"
	"github.com/tyemirov/chore/internal/utils"
	flagutils "github.com/tyemirov/chore/internal/utils/flags"
	"github.com/tyemirov/chore/internal/version"
)

const (
	applicationNameConstant                               = "chore"
	applicationUsageTemplateConstant                      = applicationNameConstant + " [task-name]"
	applicationShortDescriptionConstant                   = "Run project tasks with dependency resolution"
	applicationLongDescriptionConstant                    = "chore reads a YAML taskfile, resolves the requested task's dependency closure into a sequential plan, and runs every command with fail-fast semantics."
	configFileFlagNameConstant                            = "config"
	configFileFlagUsageConstant                           = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                              = "log-level"
	logLevelFlagUsageConstant                             = "Override the configured log level."
	logFormatFlagNameConstant                             = "log-format"
	logFormatFlagUsageConstant                            = "Override the configured log format (structured or console)."
	configurationInitializationFlagNameConstant           = "init"
	configurationInitializationFlagUsageConstant          = "Write the embedded default configuration to ./config.yaml."
	configurationInitializationForceFlagNameConstant      = "force"
	configurationInitializationForceFlagUsageConstant     = "Overwrite an existing configuration file when initializing."
	commonConfigurationKeyConstant                        = "common"
	commonLogLevelConfigKeyConstant                       = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                      = commonConfigurationKeyConstant + ".log_format"
	taskfileConfigKeyConstant                             = "taskfile"
	environmentPrefixConstant                             = "CHORE"
	configurationNameConstant                             = "config"
	configurationTypeConstant                             = "yaml"
	configurationFileNameConstant                         = configurationNameConstant + "." + configurationTypeConstant
	configurationFilePermissionConstant                   = 0o600
	configurationInitializedMessageConstant               = "configuration initialized"
	configurationInitializationSuccessMessageConstant     = "configuration file created"
	configurationInitializationContentMissingConstant     = "embedded configuration content is unavailable"
	configurationInitializationExistingTemplateConstant   = "configuration file already exists at %s (use --force to overwrite)"
	configurationInitializationDirectoryTemplateConstant  = "configuration path %s is a directory"
	configurationInitializationWriteErrorTemplateConstant = "unable to write configuration file %s: %w"
	configurationWorkingDirectoryErrorTemplateConstant    = "unable to determine working directory: %w"
	configurationLogLevelFieldConstant                    = "log_level"
	configurationLogFormatFieldConstant                   = "log_format"
	configurationFileFieldConstant                        = "config_file"
	taskfileFieldConstant                                 = "taskfile"
	xdgConfigHomeEnvironmentVariableConstant              = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant                = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                   = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                       = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant       = "%s | log level=%s | log format=%s | config file=%s"
	defaultConfigurationSearchPathConstant                = "."
	userConfigurationDirectoryNameConstant                = ".chore"
	configurationSearchPathEnvironmentVariableConstant    = "CHORE_CONFIG_SEARCH_PATH"
	versionFlagNameConstant                               = "version"
	versionFlagUsageConstant                              = "Print the application version and exit"
	versionOutputTemplateConstant                         = "chore version: %s\n"
	versionCommandUseNameConstant                         = "version"
	versionCommandShortDescriptionConstant                = "Print the chore version"
	versionCommandLongDescriptionConstant                 = "version prints the current chore release identifier."
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Taskfile string                         `mapstructure:"taskfile"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	taskfileFlagValue                 string
	commandContextAccessor            utils.CommandContextAccessor
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func(context.Context) string
	exitFunction                      func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	runBuilder := &runnercli.RunCommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUsageTemplateConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			versionRequested := application.versionFlag
			if command != nil {
				if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
					versionRequested = flagValue
				}
			}

			if versionRequested {
				application.printVersion(command.Context())
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			initializationHandled, initializationError := application.handleConfigurationInitialization(command)
			if initializationError != nil {
				return initializationError
			}
			if initializationHandled {
				return nil
			}

			return runBuilder.Run(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.taskfileFlagValue, flagutils.TaskfileFlagName, "", flagutils.TaskfileFlagUsage)
	cobraCommand.Flags().Bool(configurationInitializationFlagNameConstant, false, configurationInitializationFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.configurationInitializationForced, configurationInitializationForceFlagNameConstant, false, configurationInitializationForceFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context())
			return nil
		},
	}
	cobraCommand.AddCommand(versionCommand)

	if runCommand, runBuildError := runBuilder.Build(); runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	listBuilder := &runnercli.ListCommandBuilder{}
	if listCommand, listBuildError := listBuilder.Build(); listBuildError == nil {
		cobraCommand.AddCommand(listCommand)
	}

	planBuilder := &runnercli.PlanCommandBuilder{}
	if planCommand, planBuildError := planBuilder.Build(); planBuildError == nil {
		cobraCommand.AddCommand(planCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(os.Args[1:])

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		defaultSearchPaths := []string{defaultConfigurationSearchPathConstant}
		userConfigurationDirectoryPaths := application.resolveUserConfigurationDirectoryPaths()
		if len(userConfigurationDirectoryPaths) > 0 {
			defaultSearchPaths = append(defaultSearchPaths, userConfigurationDirectoryPaths...)
		}

		return defaultSearchPaths
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, userConfigurationDirectoryNameConstant)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))

	userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir()
	if userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath)
	}

	userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
	if userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		taskfileConfigKeyConstant:        runnercli.DefaultTaskfileName,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, flagutils.TaskfileFlagName) {
		application.configuration.Taskfile = application.taskfileFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithTaskfilePath(updatedContext, application.configuration.Taskfile)
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

// TaskfilePath returns the effective taskfile path after initialization.
func (application *Application) TaskfilePath() string {
	return application.configuration.Taskfile
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(taskfileFieldConstant, application.configuration.Taskfile),
	)
}

func (application *Application) handleConfigurationInitialization(command *cobra.Command) (bool, error) {
	if command == nil || !command.Flags().Changed(configurationInitializationFlagNameConstant) {
		return false, nil
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if len(configurationContent) == 0 {
		return true, errors.New(configurationInitializationContentMissingConstant)
	}

	workingDirectoryPath, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return true, fmt.Errorf(configurationWorkingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	configurationFilePath := filepath.Join(workingDirectoryPath, configurationFileNameConstant)

	fileInfo, fileStatError := os.Stat(configurationFilePath)
	switch {
	case fileStatError == nil:
		if fileInfo.IsDir() {
			return true, fmt.Errorf(configurationInitializationDirectoryTemplateConstant, configurationFilePath)
		}
		if !application.configurationInitializationForced {
			return true, fmt.Errorf(configurationInitializationExistingTemplateConstant, configurationFilePath)
		}
	case errors.Is(fileStatError, os.ErrNotExist):
	default:
		return true, fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, configurationFilePath, fileStatError)
	}

	if writeError := os.WriteFile(configurationFilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return true, fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, configurationFilePath, writeError)
	}

	application.logger.Info(
		configurationInitializationSuccessMessageConstant,
		zap.String(configurationFileFieldConstant, configurationFilePath),
	)

	return true, nil
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	resolved := version.Detect(executionContext, version.Dependencies{})
	trimmed := strings.TrimSpace(resolved)
	if len(trimmed) == 0 {
		return resolved
	}
	return trimmed
}

func (application *Application) printVersion(executionContext context.Context) {
	versionString := application.versionResolver(executionContext)
	fmt.Printf(versionOutputTemplateConstant, versionString)
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		candidateFlag := flagSet.Lookup(flagName)
		if candidateFlag != nil && candidateFlag.Changed {
			return true
		}
	}

	return false
}
