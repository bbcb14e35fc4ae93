// Package logger configures the global zerolog logger.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init configures the global logger at the given level. Safe to call more
// than once; only the first call takes effect.
func Init(level string) {
	initOnce.Do(func() { setup(level) })
}

func setup(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})

	logger = zerolog.New(console).With().Timestamp().Logger()
	log.Logger = logger
}

// Logger returns the global logger, initializing it with defaults on first
// use.
func Logger() *zerolog.Logger {
	Init("info")
	return &logger
}
