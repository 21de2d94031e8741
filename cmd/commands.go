package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/raystack/salt/cmdx"
	cli "github.com/spf13/cobra"

	"github.com/skiffhq/skiff/cmd/deploy"
	"github.com/skiffhq/skiff/cmd/initialize"
	"github.com/skiffhq/skiff/cmd/run"
	"github.com/skiffhq/skiff/cmd/version"
)

// New constructs the 'root' command. It houses all other sub commands
// default output of logging should go to stdout
// interactive output like progress bars should go to stderr
// unless the stdout/err is a tty, colors/progressbar should be disabled
func New() *cli.Command {
	cmd := &cli.Command{
		Use: "skiff <command> [flags]",
		Long: heredoc.Doc(`
			Skiff runs gated deploy pipelines for analytics notebooks: checks
			run first, and only when they succeed are notebooks, dashboards and
			job definitions shipped to the remote workspace.

			The workspace credentials are read from the environment:
			1. SKIFF_HOST
			2. SKIFF_TOKEN`),
		SilenceUsage: true,
		Example: heredoc.Doc(`
				$ skiff init
				$ skiff run
				$ skiff deploy --skip-jobs
			`),
		Annotations: map[string]string{
			"group:core": "true",
			"help:learn": heredoc.Doc(`
				Use 'skiff <command> --help' for more information about a command.
			`),
			"help:feedback": heredoc.Doc(`
				Open an issue here https://github.com/skiffhq/skiff/issues
			`),
		},
	}

	cmdx.SetHelp(cmd)

	cmd.AddCommand(
		deploy.NewDeployCommand(),
		initialize.NewInitializeCommand(),
		run.NewRunCommand(),
		version.NewVersionCommand(),
	)
	return cmd
}
