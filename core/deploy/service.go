package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/raystack/salt/log"
	"github.com/spf13/afero"

	"github.com/skiffhq/skiff/core/pipeline"
	"github.com/skiffhq/skiff/internal/errors"
)

// Service executes the deploy stage contract: verify credentials, import
// notebooks, publish dashboards and job definitions, then trigger jobs.
// Upload and trigger stay independent steps; any failure aborts the
// remaining steps without rollback, so a partially deployed state is a
// possible terminal outcome.
type Service struct {
	logger   log.Logger
	client   Client
	repos    RepositoryFactory
	fs       afero.Fs
	progress ProgressObserver

	skipDashboards bool
	skipJobs       bool
}

type ServiceOption func(*Service)

func WithProgress(p ProgressObserver) ServiceOption {
	return func(s *Service) { s.progress = p }
}

func WithSkipDashboards(skip bool) ServiceOption {
	return func(s *Service) { s.skipDashboards = skip }
}

// WithSkipJobs uploads everything but triggers nothing.
func WithSkipJobs(skip bool) ServiceOption {
	return func(s *Service) { s.skipJobs = skip }
}

func NewService(logger log.Logger, client Client, repos RepositoryFactory, fs afero.Fs, opts ...ServiceOption) *Service {
	s := &Service{
		logger:   logger,
		client:   client,
		repos:    repos,
		fs:       fs,
		progress: discardProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Deploy(ctx context.Context, spec *pipeline.DeploySpec, workDir string) error {
	if spec == nil {
		return errors.NewInvalidArgumentError(errors.EntityPipeline, "deploy spec is nil")
	}

	s.progress.Start("verifying workspace credentials")
	err := s.client.VerifyCredentials(ctx)
	s.progress.Stop()
	if err != nil {
		return fmt.Errorf("credential verification failed: %w", err)
	}

	if err := s.deployNotebooks(ctx, spec, workDir); err != nil {
		return err
	}
	if err := s.deployDashboards(ctx, workDir); err != nil {
		return err
	}
	if err := s.deployJobSpecs(ctx, workDir); err != nil {
		return err
	}
	return s.triggerJobs(ctx, spec)
}

func (s *Service) deployNotebooks(ctx context.Context, spec *pipeline.DeploySpec, workDir string) error {
	notebooks, err := s.repos.NotebookRepository(workDir).GetAll(ctx)
	if err != nil {
		if isSentinel(err, ErrNoNotebooks) {
			s.logger.Warn("no notebooks found to deploy")
			return nil
		}
		return err
	}

	s.progress.StartProgress(len(notebooks), "importing notebooks")
	defer s.progress.Stop()
	for i, nb := range notebooks {
		remotePath := nb.Destination
		if remotePath == "" {
			remotePath = path.Join(spec.DestinationDir, nb.Name)
		}

		content, err := afero.ReadFile(s.fs, filepath.Join(workDir, nb.LocalPath))
		if err != nil {
			if os.IsNotExist(err) {
				return errors.NewNotFoundError(errors.EntityNotebook,
					fmt.Sprintf("notebook file [%s] does not exist", nb.LocalPath), err)
			}
			return errors.NewInternalError(errors.EntityNotebook,
				fmt.Sprintf("unable to read notebook file [%s]", nb.LocalPath), err)
		}

		if err := s.client.ImportNotebook(ctx, remotePath, nb.Language, nb.Format, content, spec.Overwrite); err != nil {
			return fmt.Errorf("unable to import notebook [%s] to [%s]: %w", nb.Name, remotePath, err)
		}
		s.logger.Info(fmt.Sprintf("notebook [%s] imported to [%s]", nb.Name, remotePath))
		_ = s.progress.SetProgress(i + 1)
	}
	return nil
}

func (s *Service) deployDashboards(ctx context.Context, workDir string) error {
	if s.skipDashboards {
		s.logger.Info("skipping dashboard deployment")
		return nil
	}
	dashboards, err := s.repos.DashboardRepository(workDir).GetAll(ctx)
	if err != nil {
		if isSentinel(err, ErrNoDashboards) {
			return nil
		}
		return err
	}
	for _, d := range dashboards {
		if err := s.client.DeployDashboard(ctx, d.Name, d.Payload); err != nil {
			return fmt.Errorf("unable to deploy dashboard [%s]: %w", d.Name, err)
		}
		s.logger.Info(fmt.Sprintf("dashboard [%s] deployed", d.Name))
	}
	return nil
}

func (s *Service) deployJobSpecs(ctx context.Context, workDir string) error {
	jobSpecs, err := s.repos.JobSpecRepository(workDir).GetAll(ctx)
	if err != nil {
		if isSentinel(err, ErrNoJobSpecs) {
			return nil
		}
		return err
	}
	for _, j := range jobSpecs {
		if err := s.client.DeployJobSpec(ctx, j.Name, j.Settings); err != nil {
			return fmt.Errorf("unable to deploy job definition [%s]: %w", j.Name, err)
		}
		s.logger.Info(fmt.Sprintf("job definition [%s] deployed", j.Name))
	}
	return nil
}

// triggerJobs fires each configured job once. The pipeline does not
// observe the remote run beyond the returned run id.
func (s *Service) triggerJobs(ctx context.Context, spec *pipeline.DeploySpec) error {
	if s.skipJobs {
		s.logger.Info("skipping job triggers")
		return nil
	}
	for _, jobID := range spec.Jobs {
		runID, err := s.client.TriggerJob(ctx, jobID)
		if err != nil {
			return fmt.Errorf("unable to trigger job [%d]: %w", jobID, err)
		}
		s.logger.Info(fmt.Sprintf("job [%d] triggered, remote run id [%d]", jobID, runID))
	}
	return nil
}
