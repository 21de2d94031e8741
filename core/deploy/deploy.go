package deploy

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrNoNotebooks  = errors.New("no notebook specifications are found")
	ErrNoDashboards = errors.New("no dashboard specifications are found")
	ErrNoJobSpecs   = errors.New("no job specifications are found")
	ErrNoSuchSpec   = errors.New("spec not found")
)

// Notebook is a local notebook artifact discovered in the project tree.
// LocalPath is relative to the stage workspace; Destination, when set,
// overrides the computed remote path.
type Notebook struct {
	Name        string
	LocalPath   string
	Language    string
	Format      string
	Destination string
}

// Dashboard is a local dashboard definition, deployed create-or-update
// by display name.
type Dashboard struct {
	Name    string
	Payload map[string]interface{}
}

// JobSpec is a job definition kept in the repository; git is the source
// of truth and the remote definition is reset to match it.
type JobSpec struct {
	Name     string
	Settings json.RawMessage
}

// Client is the remote workspace surface the deploy stage needs. All
// calls block until the remote responds; none of them poll afterwards.
type Client interface {
	VerifyCredentials(ctx context.Context) error
	ImportNotebook(ctx context.Context, remotePath, language, format string, content []byte, overwrite bool) error
	DeployDashboard(ctx context.Context, name string, payload map[string]interface{}) error
	DeployJobSpec(ctx context.Context, name string, settings json.RawMessage) error
	TriggerJob(ctx context.Context, jobID int64) (int64, error)
}

type NotebookRepository interface {
	GetAll(ctx context.Context) ([]Notebook, error)
}

type DashboardRepository interface {
	GetAll(ctx context.Context) ([]Dashboard, error)
}

type JobSpecRepository interface {
	GetAll(ctx context.Context) ([]JobSpec, error)
}

// RepositoryFactory builds artifact repositories rooted at a stage
// workspace directory.
type RepositoryFactory interface {
	NotebookRepository(workDir string) NotebookRepository
	DashboardRepository(workDir string) DashboardRepository
	JobSpecRepository(workDir string) JobSpecRepository
}

// ProgressObserver gets deployment progress for interactive output.
// *progressbar.ProgressBar satisfies it.
type ProgressObserver interface {
	Start(label string)
	StartProgress(count int, label string)
	SetProgress(idx int) error
	Stop()
}

func isSentinel(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}

type discardProgress struct{}

func (discardProgress) Start(string)              {}
func (discardProgress) StartProgress(int, string) {}
func (discardProgress) SetProgress(int) error     { return nil }
func (discardProgress) Stop()                     {}
