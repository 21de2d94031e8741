package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/raystack/salt/log"
	cli "github.com/spf13/cobra"

	"github.com/skiffhq/skiff/cmd/internal/deployer"
	"github.com/skiffhq/skiff/cmd/internal/plan"
	"github.com/skiffhq/skiff/cmd/logger"
	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/core/pipeline"
)

type runCommand struct {
	logger         log.Logger
	configFilePath string
	pipelineConfig *config.Pipeline

	event      string
	branch     string
	sourceDir  string
	stageNames []string
	dryRun     bool
	verbose    bool

	// overridable for tests
	executor pipeline.StepExecutor
	deployer pipeline.Deployer
}

// NewRunCommand initializes command to run the whole pipeline
func NewRunCommand() *cli.Command {
	r := &runCommand{}

	cmd := &cli.Command{
		Use:   "run",
		Short: "Run the pipeline stages declared in the config",
		Long: heredoc.Doc(`Run every stage of the pipeline in declared order.

			A stage only runs when all stages it needs have succeeded. The
			trigger rules in the config decide whether this event and branch
			run anything at all.`),
		Example: heredoc.Doc(`
			$ skiff run
			$ skiff run --event push --branch main
			$ skiff run --stage deploy
			$ skiff run --dry-run
		`),
		RunE:    r.RunE,
		PreRunE: r.PreRunE,
	}

	cmd.Flags().StringVarP(&r.configFilePath, "config", "c", r.configFilePath, "File path for pipeline configuration")
	cmd.Flags().StringVar(&r.event, "event", "", "CI event for this run (defaults to the CI host environment)")
	cmd.Flags().StringVar(&r.branch, "branch", "", "Branch for this run (defaults to the CI host environment)")
	cmd.Flags().StringVar(&r.sourceDir, "source-dir", ".", "Directory holding the sources to run against")
	cmd.Flags().StringArrayVar(&r.stageNames, "stage", nil, "Run only the named stages, together with the stages they need")
	cmd.Flags().BoolVar(&r.dryRun, "dry-run", false, "Print the execution plan without running anything")
	cmd.Flags().BoolVarP(&r.verbose, "verbose", "v", false, "Print debug level logs")
	return cmd
}

func (r *runCommand) PreRunE(_ *cli.Command, _ []string) error {
	conf, err := config.LoadPipelineConfig(r.configFilePath)
	if err != nil {
		return err
	}
	if err := config.ValidatePipelineConfig(conf); err != nil {
		return err
	}
	if err := conf.ValidateStageNames(r.stageNames...); err != nil {
		return err
	}

	r.pipelineConfig = conf
	if r.verbose {
		conf.Log.Level = config.LogLevelDebug
	}
	r.logger = logger.NewClientLogger(conf.Log)
	if r.event == "" {
		r.event = pipeline.EventFromEnv()
	}
	if r.branch == "" {
		r.branch = pipeline.BranchFromEnv()
	}
	return nil
}

func (r *runCommand) RunE(_ *cli.Command, _ []string) error {
	if len(r.stageNames) > 0 {
		stages, err := selectStages(r.pipelineConfig, r.stageNames)
		if err != nil {
			return err
		}
		r.pipelineConfig.Stages = stages
	}

	p, err := pipeline.FromConfig(r.pipelineConfig)
	if err != nil {
		return err
	}

	if r.dryRun {
		plan.Render(os.Stdout, p.Plan())
		return nil
	}

	sourceDir, err := filepath.Abs(r.sourceDir)
	if err != nil {
		return err
	}
	rc := pipeline.NewRunContext(r.event, r.branch, sourceDir)
	r.logger.Info(fmt.Sprintf("run [%s] started for event [%s] on branch [%s], stages [%s]",
		rc.RunID, rc.Event, rc.Branch, strings.Join(r.pipelineConfig.GetAllStageNames(), ", ")))

	runner := pipeline.NewRunner(r.logger, r.stepExecutor(), r.stageDeployer())
	result, err := runner.Run(context.Background(), p, rc)
	if result != nil {
		plan.RenderResult(os.Stdout, result)
	}
	if err != nil {
		r.logger.Error(logger.ColoredError("run [%s] failed", rc.RunID))
		return err
	}
	r.logger.Info(logger.ColoredSuccess("run [%s] finished with status [%s]", rc.RunID, result.Status))
	return nil
}

func (r *runCommand) stepExecutor() pipeline.StepExecutor {
	if r.executor != nil {
		return r.executor
	}
	return pipeline.NewShellExecutor()
}

func (r *runCommand) stageDeployer() pipeline.Deployer {
	if r.deployer != nil {
		return r.deployer
	}
	return deployer.NewWorkspaceDeployer(r.logger, r.pipelineConfig)
}

// selectStages narrows the pipeline to the named stages plus everything
// they need, transitively, keeping the declared order so the gating
// semantics stay intact.
func selectStages(conf *config.Pipeline, names []string) ([]*config.Stage, error) {
	selected := map[string]bool{}
	var add func(name string) error
	add = func(name string) error {
		if selected[name] {
			return nil
		}
		stage, err := conf.GetStageByName(name)
		if err != nil {
			return err
		}
		selected[name] = true
		for _, need := range stage.Needs {
			if err := add(need); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := add(name); err != nil {
			return nil, err
		}
	}

	var stages []*config.Stage
	for _, stage := range conf.Stages {
		if selected[stage.Name] {
			stages = append(stages, stage)
		}
	}
	return stages, nil
}
