package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger at the given verbosity. Encoding is
// "json" or "console"; empty means json.
func New(verbosity, encoding string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	if encoding != "" {
		config.Encoding = encoding
	}
	config.DisableStacktrace = true
	return config.Build()
}
