package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/core/pipeline"
)

func TestShellExecutor(t *testing.T) {
	t.Run("should run the step in the given work dir", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		executor := pipeline.NewShellExecutorWithWriters(&stdout, &stderr)
		workDir := t.TempDir()

		step := &pipeline.Step{Run: "pwd"}
		err := executor.Execute(context.Background(), step, workDir, pipeline.BuildStepEnv(step))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), workDir)
	})

	t.Run("should pass the step env to the process", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		executor := pipeline.NewShellExecutorWithWriters(&stdout, &stderr)

		step := &pipeline.Step{
			Run: "echo $GREETING",
			Env: map[string]string{"GREETING": "ahoy"},
		}
		err := executor.Execute(context.Background(), step, t.TempDir(), pipeline.BuildStepEnv(step))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "ahoy")
	})

	t.Run("should return the process error on nonzero exit", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		executor := pipeline.NewShellExecutorWithWriters(&stdout, &stderr)

		step := &pipeline.Step{Run: "exit 3"}
		err := executor.Execute(context.Background(), step, t.TempDir(), nil)

		require.Error(t, err)
		assert.Equal(t, 3, pipeline.ExitCode(err))
	})
}

func TestExitCode(t *testing.T) {
	t.Run("should be -1 for non process errors", func(t *testing.T) {
		assert.Equal(t, -1, pipeline.ExitCode(errors.New("boom")))
	})
}

func TestBuildStepEnv(t *testing.T) {
	t.Run("should strip the workspace token from the process env", func(t *testing.T) {
		t.Setenv(config.TokenEnvName, "super-secret")
		t.Setenv("KEEP_ME", "yes")

		env := pipeline.BuildStepEnv(&pipeline.Step{})

		for _, kv := range env {
			assert.False(t, strings.HasPrefix(kv, config.TokenEnvName+"="), "token leaked into step env")
		}
		assert.Contains(t, env, "KEEP_ME=yes")
	})

	t.Run("should append the step's own env", func(t *testing.T) {
		env := pipeline.BuildStepEnv(&pipeline.Step{
			Env: map[string]string{"STAGE_VAR": "1"},
		})

		assert.Contains(t, env, "STAGE_VAR=1")
	})
}
