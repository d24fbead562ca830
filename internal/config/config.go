package config

// Verbose forces debug level when logging is set up
var Verbose bool

// Debugf logs at debug level, which -v or log.level: debug turns on
func Debugf(format string, args ...any) {
	Log.Debugf(format, args...)
}
