package logger

import (
	"go.uber.org/zap"

	"github.com/iotaledger/liveevent.go/ierrors"
)

// Logger is the logger used by all components of the module.
type Logger = zap.SugaredLogger

// ErrInvalidConfig is returned when the logger configuration cannot be used to build a logger.
var ErrInvalidConfig = ierrors.New("invalid logger configuration")

// NewRootLogger creates a new root logger from the provided configuration.
func NewRootLogger(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, ierrors.Wrapf(ErrInvalidConfig, "unknown level %q", cfg.Level)
	}

	stacktraceLevel := zap.NewAtomicLevel()
	if err := stacktraceLevel.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
		return nil, ierrors.Wrapf(ErrInvalidConfig, "unknown stacktrace level %q", cfg.StacktraceLevel)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = DefaultCfg.Encoding
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = DefaultCfg.OutputPaths
	}

	zapCfg := zap.Config{
		Level:             level,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Encoding:          encoding,
		EncoderConfig:     defaultEncoderConfig,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	root, err := zapCfg.Build(zap.AddStacktrace(stacktraceLevel))
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to build zap logger")
	}

	return root.Sugar(), nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return zap.NewNop().Sugar()
}
