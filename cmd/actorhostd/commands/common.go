package commands

import (
	"os"

	btclog "github.com/btcsuite/btclog/v2"

	"github.com/latticehost/actorhost/internal/actorsys"
	"github.com/latticehost/actorhost/internal/build"
)

// expandHome expands a leading "~" in path to the current user's home
// directory.
func expandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

// setupLogging wires a console handler and, if logDirExpanded is non-empty,
// a rotating file handler, fanning both out through build.HandlerSet, and
// installs the result as actorsys's package logger.
func setupLogging(logDirExpanded string) (*build.RotatingLogWriter, error) {
	consoleHandler := btclog.NewDefaultHandler(os.Stderr)

	handlers := []btclog.Handler{consoleHandler}

	var rotator *build.RotatingLogWriter
	if logDirExpanded != "" {
		rotator = build.NewRotatingLogWriter()
		if err := rotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir: logDirExpanded,
		}); err != nil {
			return nil, err
		}

		fileHandler := btclog.NewDefaultHandler(rotator)
		handlers = append(handlers, fileHandler)
	}

	handlerSet := build.NewHandlerSet(handlers...)
	handlerSet.SetLevel(btclog.LevelInfo)

	logger := btclog.NewSLogger(handlerSet)
	actorsys.UseLogger(logger)

	return rotator, nil
}
