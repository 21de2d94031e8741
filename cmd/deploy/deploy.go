package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/raystack/salt/log"
	cli "github.com/spf13/cobra"

	"github.com/skiffhq/skiff/cmd/internal/deployer"
	"github.com/skiffhq/skiff/cmd/internal/plan"
	"github.com/skiffhq/skiff/cmd/logger"
	"github.com/skiffhq/skiff/config"
	coredeploy "github.com/skiffhq/skiff/core/deploy"
	"github.com/skiffhq/skiff/core/pipeline"
	"github.com/skiffhq/skiff/internal/errors"
)

type deployCommand struct {
	logger         log.Logger
	configFilePath string
	pipelineConfig *config.Pipeline

	sourceDir      string
	dryRun         bool
	skipDashboards bool
	skipJobs       bool
}

// NewDeployCommand initializes command to run only the deploy stages,
// bypassing trigger rules and stage gating
func NewDeployCommand() *cli.Command {
	d := &deployCommand{}

	cmd := &cli.Command{
		Use:   "deploy",
		Short: "Deploy artifacts to the analytics workspace",
		Long: heredoc.Doc(`Run only the deploy stages of the pipeline.

			This skips trigger rules and stage gating, so use it for manual
			deployments where the checks already ran elsewhere.`),
		Example: heredoc.Doc(`
			$ skiff deploy
			$ skiff deploy --skip-jobs
		`),
		RunE:    d.RunE,
		PreRunE: d.PreRunE,
	}

	cmd.Flags().StringVarP(&d.configFilePath, "config", "c", d.configFilePath, "File path for pipeline configuration")
	cmd.Flags().StringVar(&d.sourceDir, "source-dir", ".", "Directory holding the artifacts to deploy")
	cmd.Flags().BoolVar(&d.dryRun, "dry-run", false, "Print the deploy plan without deploying anything")
	cmd.Flags().BoolVar(&d.skipDashboards, "skip-dashboards", false, "Do not deploy dashboard definitions")
	cmd.Flags().BoolVar(&d.skipJobs, "skip-jobs", false, "Upload everything but do not trigger any job")
	return cmd
}

func (d *deployCommand) PreRunE(_ *cli.Command, _ []string) error {
	conf, err := config.LoadPipelineConfig(d.configFilePath)
	if err != nil {
		return err
	}
	if err := config.ValidatePipelineConfig(conf); err != nil {
		return err
	}

	d.pipelineConfig = conf
	d.logger = logger.NewClientLogger(conf.Log)
	return nil
}

func (d *deployCommand) RunE(_ *cli.Command, _ []string) error {
	p, err := pipeline.FromConfig(d.pipelineConfig)
	if err != nil {
		return err
	}
	deployOnly, err := deployStagesOf(p)
	if err != nil {
		return err
	}

	if d.dryRun {
		plan.Render(os.Stdout, deployOnly.Plan())
		return nil
	}

	sourceDir, err := filepath.Abs(d.sourceDir)
	if err != nil {
		return err
	}
	rc := pipeline.NewRunContext(pipeline.EventManual, "", sourceDir)

	runner := pipeline.NewRunner(d.logger,
		pipeline.NewShellExecutor(),
		deployer.NewWorkspaceDeployer(d.logger, d.pipelineConfig,
			coredeploy.WithSkipDashboards(d.skipDashboards),
			coredeploy.WithSkipJobs(d.skipJobs),
		),
	)
	result, err := runner.Run(context.Background(), deployOnly, rc)
	if err != nil {
		d.logger.Error(logger.ColoredError("deployment failed"))
		return err
	}
	d.logger.Info(logger.ColoredSuccess("deployment finished with status [%s]", result.Status))
	return nil
}

// deployStagesOf reduces a pipeline to its deploy stages. Needs are
// cleared since the stages they gate on are not part of this run.
func deployStagesOf(p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	reduced := &pipeline.Pipeline{Name: p.Name}
	for _, stage := range p.Stages {
		if stage.Kind != pipeline.StageKindDeploy {
			continue
		}
		reduced.Stages = append(reduced.Stages, &pipeline.Stage{
			Name:   stage.Name,
			Kind:   stage.Kind,
			Deploy: stage.Deploy,
		})
	}
	if len(reduced.Stages) == 0 {
		return nil, errors.NewNotFoundError(errors.EntityPipeline,
			fmt.Sprintf("pipeline [%s] has no deploy stage", p.Name), nil)
	}
	return reduced, nil
}
