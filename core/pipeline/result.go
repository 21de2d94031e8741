package pipeline

import (
	"time"

	"go.uber.org/multierr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

func (s Status) String() string {
	return string(s)
}

type StepResult struct {
	Name     string
	Status   Status
	ExitCode int
	Duration time.Duration
	Err      error
}

type StageResult struct {
	Name     string
	Kind     StageKind
	Status   Status
	Steps    []*StepResult
	Duration time.Duration
	Err      error
}

type RunResult struct {
	RunID        string
	PipelineName string
	Event        string
	Branch       string
	Status       Status
	Stages       []*StageResult
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Err aggregates every stage failure; nil when the run succeeded or was
// skipped by trigger rules.
func (r *RunResult) Err() error {
	var err error
	for _, stage := range r.Stages {
		if stage.Err != nil {
			err = multierr.Append(err, stage.Err)
		}
	}
	return err
}

func (r *RunResult) StageResult(name string) *StageResult {
	for _, stage := range r.Stages {
		if stage.Name == name {
			return stage
		}
	}
	return nil
}
