package cli

import (
	_ "embed"
)

//go:embed config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the built-in configuration document and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return embeddedDefaultConfiguration, configurationTypeConstant
}
