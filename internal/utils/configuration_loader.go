package utils

import (
	"bytes"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeyReplacerOldConstant = "."
	environmentKeyReplacerNewConstant = "_"
)

// LoadedConfiguration reports metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader merges embedded defaults, configuration files, and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader constructs a loader for the provided configuration identity and search paths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       searchPaths,
	}
}

// SetEmbeddedConfiguration registers embedded default configuration content merged before file discovery.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	loader.embeddedConfiguration = configurationData
	loader.embeddedConfigurationType = configurationType
}

// LoadConfiguration resolves configuration values into the target struct and reports the file used.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedConfigurationType
		if len(strings.TrimSpace(embeddedType)) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, mergeError
		}
	}

	if len(strings.TrimSpace(loader.environmentPrefix)) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeyReplacerOldConstant, environmentKeyReplacerNewConstant))
		viperInstance.AutomaticEnv()
	}

	configurationFileUsed := ""
	trimmedExplicitPath := strings.TrimSpace(explicitFilePath)
	if len(trimmedExplicitPath) > 0 {
		viperInstance.SetConfigFile(trimmedExplicitPath)
		if readError := viperInstance.ReadInConfig(); readError != nil {
			return LoadedConfiguration{}, readError
		}
		configurationFileUsed = viperInstance.ConfigFileUsed()
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		viperInstance.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			trimmedSearchPath := strings.TrimSpace(searchPath)
			if len(trimmedSearchPath) == 0 {
				continue
			}
			viperInstance.AddConfigPath(trimmedSearchPath)
		}
		if readError := viperInstance.MergeInConfig(); readError != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(readError, &configFileNotFound) {
				return LoadedConfiguration{}, readError
			}
		} else {
			configurationFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	if target != nil {
		decodeHook := func(decoderConfiguration *mapstructure.DecoderConfig) {
			decoderConfiguration.TagName = "mapstructure"
			decoderConfiguration.WeaklyTypedInput = true
		}
		if unmarshalError := viperInstance.Unmarshal(target, decodeHook); unmarshalError != nil {
			return LoadedConfiguration{}, unmarshalError
		}
	}

	return LoadedConfiguration{ConfigFileUsed: configurationFileUsed}, nil
}
