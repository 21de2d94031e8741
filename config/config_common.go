package config

import "strconv"

// Version implement fmt.Stringer
type Version int

// DefaultVersion is the config schema version written by `skiff init`
const DefaultVersion Version = 1

type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
	LogLevelFatal   LogLevel = "FATAL"
)

type LogConfig struct {
	Level  LogLevel `mapstructure:"level" yaml:"level" default:"INFO"` // log level - debug, info, warning, error, fatal
	Format string   `mapstructure:"format" yaml:"format,omitempty"`    // format strategy - plain, json
}

func (v Version) String() string {
	return strconv.Itoa(int(v))
}

func (l LogLevel) String() string {
	return string(l)
}
