package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raystack/salt/log"
	"github.com/spf13/afero"

	"github.com/skiffhq/skiff/internal/errors"
)

// Deployer executes the remote half of a deploy stage against the
// analytics workspace.
type Deployer interface {
	Deploy(ctx context.Context, spec *DeploySpec, workDir string) error
}

// Runner executes pipeline stages strictly sequentially, in declared
// order, honoring the dependency gate: a stage runs only when every
// stage it needs has succeeded.
type Runner struct {
	logger   log.Logger
	executor StepExecutor
	deployer Deployer

	fs          afero.Fs
	scratchRoot string
}

func NewRunner(logger log.Logger, executor StepExecutor, deployer Deployer) *Runner {
	return &Runner{
		logger:      logger,
		executor:    executor,
		deployer:    deployer,
		fs:          afero.NewOsFs(),
		scratchRoot: os.TempDir(),
	}
}

func NewRunnerWithFs(logger log.Logger, executor StepExecutor, deployer Deployer, fs afero.Fs, scratchRoot string) *Runner {
	return &Runner{
		logger:      logger,
		executor:    executor,
		deployer:    deployer,
		fs:          fs,
		scratchRoot: scratchRoot,
	}
}

func (r *Runner) Run(ctx context.Context, p *Pipeline, rc RunContext) (*RunResult, error) {
	result := &RunResult{
		RunID:        rc.RunID,
		PipelineName: p.Name,
		Event:        rc.Event,
		Branch:       rc.Branch,
		Status:       StatusRunning,
		StartedAt:    time.Now(),
	}

	if !p.Trigger.Matches(rc) {
		r.logger.Info(fmt.Sprintf("event [%s] on branch [%s] does not match trigger rules, nothing to run", rc.Event, rc.Branch))
		for _, stage := range p.Stages {
			result.Stages = append(result.Stages, &StageResult{Name: stage.Name, Kind: stage.Kind, Status: StatusSkipped})
		}
		result.Status = StatusSkipped
		result.FinishedAt = time.Now()
		return result, nil
	}

	statuses := map[string]Status{}
	for _, stage := range p.Stages {
		if unmet := unmetNeeds(stage, statuses); len(unmet) > 0 {
			r.logger.Warn(fmt.Sprintf("[%s] skipped, needs not satisfied: [%s]", stage.Name, strings.Join(unmet, ", ")))
			statuses[stage.Name] = StatusSkipped
			result.Stages = append(result.Stages, &StageResult{Name: stage.Name, Kind: stage.Kind, Status: StatusSkipped})
			continue
		}

		stageResult := r.runStage(ctx, stage, rc)
		statuses[stage.Name] = stageResult.Status
		result.Stages = append(result.Stages, stageResult)
	}

	result.FinishedAt = time.Now()
	if err := result.Err(); err != nil {
		result.Status = StatusFailed
		return result, err
	}
	result.Status = StatusSucceeded
	return result, nil
}

// unmetNeeds returns the needed stages that did not finish with success,
// including ones that were themselves skipped.
func unmetNeeds(stage *Stage, statuses map[string]Status) []string {
	var unmet []string
	for _, need := range stage.Needs {
		if statuses[need] != StatusSucceeded {
			unmet = append(unmet, need)
		}
	}
	return unmet
}

func (r *Runner) runStage(ctx context.Context, stage *Stage, rc RunContext) *StageResult {
	start := time.Now()
	stageResult := &StageResult{Name: stage.Name, Kind: stage.Kind, Status: StatusRunning}
	r.logger.Info(fmt.Sprintf("[%s] stage started", stage.Name))

	workDir, err := r.stageWorkspace(rc, stage)
	if err != nil {
		stageResult.Status = StatusFailed
		stageResult.Err = errors.NewInternalError(errors.EntityStage,
			fmt.Sprintf("unable to prepare workspace for stage [%s]", stage.Name), err)
		stageResult.Duration = time.Since(start)
		return stageResult
	}
	defer func() {
		if rmErr := r.fs.RemoveAll(workDir); rmErr != nil {
			r.logger.Warn(fmt.Sprintf("[%s] unable to clean up stage workspace: %s", stage.Name, rmErr))
		}
	}()

	switch stage.Kind {
	case StageKindDeploy:
		if deployErr := r.deployer.Deploy(ctx, stage.Deploy, workDir); deployErr != nil {
			stageResult.Status = StatusFailed
			stageResult.Err = fmt.Errorf("stage [%s] failed: %w", stage.Name, deployErr)
		} else {
			stageResult.Status = StatusSucceeded
		}
	default:
		r.runSteps(ctx, stage, workDir, stageResult)
	}

	stageResult.Duration = time.Since(start)
	if stageResult.Status == StatusSucceeded {
		r.logger.Info(fmt.Sprintf("[%s] stage finished", stage.Name))
	}
	return stageResult
}

// runSteps executes the stage's steps in order. The first nonzero exit
// aborts the remaining steps of the stage.
func (r *Runner) runSteps(ctx context.Context, stage *Stage, workDir string, stageResult *StageResult) {
	for _, step := range stage.Steps {
		stepResult := r.runStep(ctx, step, workDir)
		stageResult.Steps = append(stageResult.Steps, stepResult)
		if stepResult.Err != nil {
			stageResult.Status = StatusFailed
			stageResult.Err = fmt.Errorf("stage [%s] failed: %w", stage.Name, stepResult.Err)
			return
		}
	}
	stageResult.Status = StatusSucceeded
}

func (r *Runner) runStep(ctx context.Context, step *Step, workDir string) *StepResult {
	name := step.Name
	if name == "" {
		name = step.Run
	}
	r.logger.Info(fmt.Sprintf("> %s", name))

	start := time.Now()
	err := r.executor.Execute(ctx, step, workDir, BuildStepEnv(step))
	stepResult := &StepResult{Name: name, Duration: time.Since(start)}
	if err != nil {
		stepResult.Status = StatusFailed
		stepResult.ExitCode = ExitCode(err)
		stepResult.Err = fmt.Errorf("step [%s] failed: %w", name, err)
		return stepResult
	}
	stepResult.Status = StatusSucceeded
	return stepResult
}

// stageWorkspace seeds a scratch directory with a copy of the source
// tree. Stages never share filesystem state; each one gets its own
// checkout and the directory is discarded when the stage ends.
func (r *Runner) stageWorkspace(rc RunContext, stage *Stage) (string, error) {
	dir := filepath.Join(r.scratchRoot, fmt.Sprintf("skiff-%s-%s", rc.RunID, stage.Name))
	if err := r.fs.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	if err := copyTree(r.fs, rc.SourceDir, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func copyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return fs.MkdirAll(filepath.Join(dst, rel), info.Mode())
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(fs, filepath.Join(dst, rel), content, info.Mode())
	})
}
