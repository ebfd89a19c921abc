package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log is the process logger. It discards output until InitDebugLog or
// SetVerbose routes it somewhere.
var Log = newLogger()

var Debug = false

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	return l
}

func CheckDebug() bool {
	debug := os.Getenv("INTAKE_DEBUG")
	return debug == "true" || debug == "1"
}

// SetVerbose sends info-level logs to w.
func SetVerbose(w io.Writer) {
	if Debug {
		return
	}
	Log.SetOutput(w)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// InitDebugLog writes debug-level logs to <dataDir>/debug.log when
// INTAKE_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - request bodies may contain recognized personal data
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	Debug = true
	Log.SetOutput(f)
	Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	Log.WithField("path", logPath).Debug("debug logging started")
}
