package acestudy

import (
	"github.com/sirupsen/logrus"
)

// Log is the package logger. Commands may replace its output or formatter.
var Log = logrus.New()

// SetVerbose switches the package logger to debug level
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.InfoLevel)
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	Log.Debugf(format, v...)
}
