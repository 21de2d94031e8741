package deployer

import (
	"context"

	"github.com/raystack/salt/log"
	"github.com/spf13/afero"

	"github.com/skiffhq/skiff/cmd/progressbar"
	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/core/deploy"
	"github.com/skiffhq/skiff/core/pipeline"
	"github.com/skiffhq/skiff/ext/workspace"
	"github.com/skiffhq/skiff/internal/errors"
	"github.com/skiffhq/skiff/store/local"
)

// WorkspaceDeployer adapts the deploy service to the pipeline runner. The
// workspace client is constructed lazily on the first deploy stage, so a
// run whose trigger rules skip deployment never needs credentials at all.
type WorkspaceDeployer struct {
	logger log.Logger
	conf   *config.Pipeline
	opts   []deploy.ServiceOption

	service *deploy.Service
}

func NewWorkspaceDeployer(logger log.Logger, conf *config.Pipeline, opts ...deploy.ServiceOption) *WorkspaceDeployer {
	return &WorkspaceDeployer{
		logger: logger,
		conf:   conf,
		opts:   opts,
	}
}

func (d *WorkspaceDeployer) Deploy(ctx context.Context, spec *pipeline.DeploySpec, workDir string) error {
	if d.service == nil {
		service, err := d.buildService()
		if err != nil {
			return err
		}
		d.service = service
	}
	return d.service.Deploy(ctx, spec, workDir)
}

func (d *WorkspaceDeployer) buildService() (*deploy.Service, error) {
	if d.conf.Host == "" {
		return nil, errors.NewFailedPrecondError(errors.EntityWorkspace,
			"workspace host is not set, provide it in the config or via "+config.HostEnvName)
	}
	client, err := workspace.NewClient(d.conf.Host, config.LoadAccessToken())
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	repos := local.NewSpecRepositoryFactory(fs, d.conf.Project)

	opts := append([]deploy.ServiceOption{
		deploy.WithProgress(progressbar.NewProgressBar()),
	}, d.opts...)
	return deploy.NewService(d.logger, client, repos, fs, opts...), nil
}
