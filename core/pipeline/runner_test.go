package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raystack/salt/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffhq/skiff/core/pipeline"
)

type fakeExecutor struct {
	executed []string
	failOn   map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, step *pipeline.Step, _ string, _ []string) error {
	f.executed = append(f.executed, step.Run)
	if err, ok := f.failOn[step.Run]; ok {
		return err
	}
	return nil
}

type fakeDeployer struct {
	specs    []*pipeline.DeploySpec
	workDirs []string
	fs       afero.Fs
	seenFile map[string]bool
	err      error
}

func (f *fakeDeployer) Deploy(_ context.Context, spec *pipeline.DeploySpec, workDir string) error {
	f.specs = append(f.specs, spec)
	f.workDirs = append(f.workDirs, workDir)
	if f.fs != nil && f.seenFile != nil {
		for name := range f.seenFile {
			exists, _ := afero.Exists(f.fs, workDir+"/"+name)
			f.seenFile[name] = exists
		}
	}
	return f.err
}

func newTestRunner(executor pipeline.StepExecutor, deployer pipeline.Deployer, fs afero.Fs) *pipeline.Runner {
	return pipeline.NewRunnerWithFs(log.NewNoop(), executor, deployer, fs, "/scratch")
}

func sourceFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/notebooks", 0o750))
	require.NoError(t, afero.WriteFile(fs, "/src/notebooks/example.py", []byte("print('hi')"), 0o640))
	return fs
}

func gatedPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: "analytics-ci",
		Trigger: pipeline.Trigger{
			Events:   []string{pipeline.EventPush},
			Branches: []string{"main"},
		},
		Stages: []*pipeline.Stage{
			{
				Name: "test",
				Kind: pipeline.StageKindExec,
				Steps: []*pipeline.Step{
					{Name: "unit tests", Run: "make test"},
				},
			},
			{
				Name:  "deploy",
				Kind:  pipeline.StageKindDeploy,
				Needs: []string{"test"},
				Deploy: &pipeline.DeploySpec{
					DestinationDir: "/Users/user@example.com",
					Overwrite:      true,
					Jobs:           []int64{12345},
				},
			},
		},
	}
}

func TestRunnerRun(t *testing.T) {
	t.Run("should run stages in declared order when all succeed", func(t *testing.T) {
		executor := &fakeExecutor{}
		deployer := &fakeDeployer{}
		runner := newTestRunner(executor, deployer, sourceFs(t))

		rc := pipeline.RunContext{RunID: "run-1", Event: "push", Branch: "main", SourceDir: "/src"}
		result, err := runner.Run(context.Background(), gatedPipeline(), rc)

		require.NoError(t, err)
		assert.Equal(t, pipeline.StatusSucceeded, result.Status)
		assert.Equal(t, []string{"make test"}, executor.executed)
		require.Len(t, deployer.specs, 1)
		assert.Equal(t, "/Users/user@example.com", deployer.specs[0].DestinationDir)
		assert.Equal(t, []int64{12345}, deployer.specs[0].Jobs)
	})

	t.Run("should skip everything when trigger rules do not match", func(t *testing.T) {
		executor := &fakeExecutor{}
		deployer := &fakeDeployer{}
		runner := newTestRunner(executor, deployer, sourceFs(t))

		rc := pipeline.RunContext{RunID: "run-2", Event: "pull_request", Branch: "main", SourceDir: "/src"}
		result, err := runner.Run(context.Background(), gatedPipeline(), rc)

		require.NoError(t, err)
		assert.Equal(t, pipeline.StatusSkipped, result.Status)
		assert.Empty(t, executor.executed)
		assert.Empty(t, deployer.specs)
		for _, stage := range result.Stages {
			assert.Equal(t, pipeline.StatusSkipped, stage.Status)
		}
	})

	t.Run("should not deploy when the gating stage fails", func(t *testing.T) {
		executor := &fakeExecutor{
			failOn: map[string]error{"make test": errors.New("exit status 1")},
		}
		deployer := &fakeDeployer{}
		runner := newTestRunner(executor, deployer, sourceFs(t))

		rc := pipeline.RunContext{RunID: "run-3", Event: "push", Branch: "main", SourceDir: "/src"}
		result, err := runner.Run(context.Background(), gatedPipeline(), rc)

		require.Error(t, err)
		assert.Equal(t, pipeline.StatusFailed, result.Status)
		assert.Equal(t, pipeline.StatusFailed, result.StageResult("test").Status)
		assert.Equal(t, pipeline.StatusSkipped, result.StageResult("deploy").Status)
		assert.Empty(t, deployer.specs)
	})

	t.Run("should abort remaining steps after the first failure", func(t *testing.T) {
		executor := &fakeExecutor{
			failOn: map[string]error{"make lint": errors.New("exit status 2")},
		}
		deployer := &fakeDeployer{}
		runner := newTestRunner(executor, deployer, sourceFs(t))

		p := gatedPipeline()
		p.Stages[0].Steps = []*pipeline.Step{
			{Run: "make lint"},
			{Run: "make test"},
		}

		rc := pipeline.RunContext{RunID: "run-4", Event: "push", Branch: "main", SourceDir: "/src"}
		result, err := runner.Run(context.Background(), p, rc)

		require.Error(t, err)
		assert.Equal(t, []string{"make lint"}, executor.executed)
		require.Len(t, result.StageResult("test").Steps, 1)
	})

	t.Run("should seed the deploy stage workspace from the source tree", func(t *testing.T) {
		fs := sourceFs(t)
		executor := &fakeExecutor{}
		deployer := &fakeDeployer{
			fs:       fs,
			seenFile: map[string]bool{"notebooks/example.py": false},
		}
		runner := newTestRunner(executor, deployer, fs)

		rc := pipeline.RunContext{RunID: "run-5", Event: "push", Branch: "main", SourceDir: "/src"}
		_, err := runner.Run(context.Background(), gatedPipeline(), rc)

		require.NoError(t, err)
		require.Len(t, deployer.workDirs, 1)
		assert.NotEqual(t, "/src", deployer.workDirs[0])
		assert.True(t, deployer.seenFile["notebooks/example.py"], "source tree not copied into stage workspace")

		// scratch dir is gone once the stage finished
		exists, _ := afero.DirExists(fs, deployer.workDirs[0])
		assert.False(t, exists)
	})

	t.Run("should fail the run when deployment fails", func(t *testing.T) {
		executor := &fakeExecutor{}
		deployer := &fakeDeployer{err: errors.New("credential verification failed")}
		runner := newTestRunner(executor, deployer, sourceFs(t))

		rc := pipeline.RunContext{RunID: "run-6", Event: "push", Branch: "main", SourceDir: "/src"}
		result, err := runner.Run(context.Background(), gatedPipeline(), rc)

		require.Error(t, err)
		assert.Equal(t, pipeline.StatusFailed, result.StageResult("deploy").Status)
	})
}
