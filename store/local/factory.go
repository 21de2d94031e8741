package local

import (
	"github.com/spf13/afero"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/core/deploy"
)

// SpecRepositoryFactory builds artifact repositories rooted at a stage
// workspace, using the project's configured artifact directories.
type SpecRepositoryFactory struct {
	fs      afero.Fs
	project config.Project
}

func NewSpecRepositoryFactory(fs afero.Fs, project config.Project) *SpecRepositoryFactory {
	return &SpecRepositoryFactory{
		fs:      fs,
		project: project,
	}
}

func (f *SpecRepositoryFactory) NotebookRepository(workDir string) deploy.NotebookRepository {
	return NewNotebookRepository(f.fs, workDir, f.project.NotebookDir)
}

func (f *SpecRepositoryFactory) DashboardRepository(workDir string) deploy.DashboardRepository {
	return NewDashboardRepository(f.fs, workDir, f.project.DashboardDir)
}

func (f *SpecRepositoryFactory) JobSpecRepository(workDir string) deploy.JobSpecRepository {
	return NewJobSpecRepository(f.fs, workDir, f.project.JobDir)
}
