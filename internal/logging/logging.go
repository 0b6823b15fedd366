package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger, set by Init. It starts as a no-op so
// packages can log before Init runs (and in tests).
var Logger = zap.NewNop().Sugar()

// New builds a console logger; debug lowers the level to Debug, otherwise Info.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Init replaces Logger; it panics when zap cannot be configured.
func Init(debug bool) *zap.SugaredLogger {
	l, err := New(debug)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Logger = l
	return l
}
