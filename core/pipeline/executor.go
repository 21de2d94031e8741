package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/skiffhq/skiff/config"
)

// StepExecutor runs a single exec step inside a stage workspace and
// blocks until the underlying process exits.
type StepExecutor interface {
	Execute(ctx context.Context, step *Step, workDir string, env []string) error
}

// ShellExecutor runs steps through the local shell, streaming output to
// the configured writers.
type ShellExecutor struct {
	stdout io.Writer
	stderr io.Writer
}

func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func NewShellExecutorWithWriters(stdout, stderr io.Writer) *ShellExecutor {
	return &ShellExecutor{
		stdout: stdout,
		stderr: stderr,
	}
}

func (e *ShellExecutor) Execute(ctx context.Context, step *Step, workDir string, env []string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
	cmd.Dir = workDir
	cmd.Env = env
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	return cmd.Run()
}

// ExitCode extracts the process exit code from an executor error,
// -1 when the step never started or was killed by a signal.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// BuildStepEnv merges the process environment with the step's own env.
// The workspace access token is stripped: exec steps never see deploy
// credentials.
func BuildStepEnv(step *Step) []string {
	env := []string{}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.TokenEnvName+"=") {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range step.Env {
		env = append(env, k+"="+v)
	}
	return env
}
