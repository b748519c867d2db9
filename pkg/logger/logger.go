package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds the process logger. Every entry carries the service name,
// environment and version so lines from the API and the CLI tools can be
// told apart in a shared sink.
func New(cfg config.LogConfig, app config.AppConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case FormatJSON:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "ts"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		// Booking and cancellation lines are the audit trail; never sample them away.
		zapCfg.Sampling = nil
	case FormatConsole:
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q: want %q or %q", cfg.Format, FormatJSON, FormatConsole)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{cfg.OutputPath}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.InitialFields = serviceFields(app)

	return build(zapCfg)
}

func serviceFields(app config.AppConfig) map[string]any {
	fields := map[string]any{}
	if app.Name != "" {
		fields["service"] = app.Name
	}
	if app.Environment != "" {
		fields["env"] = app.Environment
	}
	if app.Version != "" {
		fields["version"] = app.Version
	}
	return fields
}

func build(zapCfg zap.Config) (*zap.Logger, error) {
	log, err := zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
