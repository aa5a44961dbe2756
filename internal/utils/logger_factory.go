package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
)

// LogLevel identifies a supported logging verbosity.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat identifies a supported log encoding.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerOutputs bundles the diagnostic and console loggers produced by the factory.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory creates zap loggers from declarative level and format values.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory instance.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger builds a single logger honoring the requested level and format.
func (factory *LoggerFactory) CreateLogger(requestedLevel LogLevel, requestedFormat LogFormat) (*zap.Logger, error) {
	outputs, creationError := factory.CreateLoggerOutputs(requestedLevel, requestedFormat)
	if creationError != nil {
		return nil, creationError
	}
	return outputs.DiagnosticLogger, nil
}

// CreateLoggerOutputs builds the diagnostic and console loggers for the requested configuration.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLevel LogLevel, requestedFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := resolveZapLevel(requestedLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	diagnosticEncoder, encoderError := resolveEncoder(requestedFormat)
	if encoderError != nil {
		return LoggerOutputs{}, encoderError
	}

	diagnosticCore := zapcore.NewCore(diagnosticEncoder, zapcore.Lock(os.Stderr), zapLevel)
	consoleCore := zapcore.NewCore(newConsoleEncoder(), zapcore.Lock(os.Stdout), zapLevel)

	return LoggerOutputs{
		DiagnosticLogger: zap.New(diagnosticCore),
		ConsoleLogger:    zap.New(consoleCore),
	}, nil
}

func resolveZapLevel(requestedLevel LogLevel) (zapcore.Level, error) {
	switch requestedLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, string(requestedLevel))
	}
}

func resolveEncoder(requestedFormat LogFormat) (zapcore.Encoder, error) {
	switch requestedFormat {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.TimeKey = "timestamp"
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		return newConsoleEncoder(), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, string(requestedFormat))
	}
}

func newConsoleEncoder() zapcore.Encoder {
	encoderConfiguration := zap.NewDevelopmentEncoderConfig()
	encoderConfiguration.TimeKey = zapcore.OmitKey
	encoderConfiguration.LevelKey = zapcore.OmitKey
	encoderConfiguration.CallerKey = zapcore.OmitKey
	return zapcore.NewConsoleEncoder(encoderConfiguration)
}
