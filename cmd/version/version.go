package version

import (
	"fmt"

	"github.com/raystack/salt/log"
	"github.com/spf13/cobra"

	"github.com/skiffhq/skiff/cmd/logger"
	"github.com/skiffhq/skiff/config"
)

type versionCommand struct {
	logger log.Logger
}

// NewVersionCommand initializes command to get version
func NewVersionCommand() *cobra.Command {
	v := &versionCommand{
		logger: logger.NewDefaultLogger(),
	}

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the skiff version information",
		Example: "skiff version",
		RunE:    v.RunE,
	}
	return cmd
}

func (v *versionCommand) RunE(_ *cobra.Command, _ []string) error {
	v.logger.Info(logger.ColoredNotice("skiff %s", config.BuildVersion))
	if config.BuildCommit != "" {
		v.logger.Info(fmt.Sprintf("build commit: %s", config.BuildCommit))
	}
	if config.BuildDate != "" {
		v.logger.Info(fmt.Sprintf("build date: %s", config.BuildDate))
	}
	return nil
}
