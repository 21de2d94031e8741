package logger

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/raystack/salt/log"
	"github.com/sirupsen/logrus"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/internal/utils"
)

var (
	// ColoredNotice format message with color for notification
	ColoredNotice = fmt.Sprintf
	// ColoredError format message with color for error
	ColoredError = fmt.Sprintf
	// ColoredSuccess format message with color for success
	ColoredSuccess = fmt.Sprintf
)

func init() {
	// colors only when someone is watching
	if utils.IsTerminal(os.Stderr) {
		ColoredNotice = color.New(color.Bold, color.FgCyan).Sprintf
		ColoredError = color.New(color.Bold, color.FgHiRed).Sprintf
		ColoredSuccess = color.New(color.Bold, color.FgHiGreen).Sprintf
	}
}

type plainFormatter int

func (*plainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if len(entry.Data) > 0 {
		var data string
		for key, val := range entry.Data {
			data += fmt.Sprintf("%s: %v ", key, val)
		}
		return []byte(fmt.Sprintf("%s %s\n", entry.Message, data)), nil
	}
	return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
}

// NewDefaultLogger initializes plain logger
func NewDefaultLogger() log.Logger {
	return log.NewLogrus(
		log.LogrusWithLevel(config.LogLevelInfo.String()),
		log.LogrusWithFormatter(new(plainFormatter)),
	)
}

// NewClientLogger initializes client logger based on log configuration
func NewClientLogger(logConfig config.LogConfig) log.Logger {
	if logConfig.Level == "" {
		return NewDefaultLogger()
	}

	return log.NewLogrus(
		log.LogrusWithLevel(logConfig.Level.String()),
		log.LogrusWithFormatter(new(plainFormatter)),
	)
}
