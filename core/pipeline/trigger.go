package pipeline

import (
	"fmt"
	"os"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/internal/utils"
)

const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
	EventManual      = "manual"
)

// Trigger filters which CI events may run the pipeline. Empty lists
// match everything.
type Trigger struct {
	Events   []string
	Branches []string
}

func (t Trigger) Matches(rc RunContext) bool {
	if len(t.Events) > 0 && !utils.ContainsString(t.Events, rc.Event) {
		return false
	}
	if len(t.Branches) > 0 && !utils.ContainsString(t.Branches, rc.Branch) {
		return false
	}
	return true
}

// RunContext describes a single invocation of the pipeline. It exists
// only for the duration of that run.
type RunContext struct {
	RunID     string
	Event     string
	Branch    string
	SourceDir string
}

func NewRunContext(event, branch, sourceDir string) RunContext {
	return RunContext{
		RunID:     generateRunID(),
		Event:     event,
		Branch:    branch,
		SourceDir: sourceDir,
	}
}

func generateRunID() string {
	return fmt.Sprintf("%s-%s", petname.Generate(2, "-"), uuid.New().String()[:8])
}

// EventFromEnv resolves the CI event name, preferring skiff's own variable
// and falling back to the common CI host variables. Absent both, the run
// is treated as manual.
func EventFromEnv() string {
	for _, key := range []string{config.EventEnvName, "GITHUB_EVENT_NAME", "CI_PIPELINE_SOURCE"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return EventManual
}

// BranchFromEnv resolves the branch the run is for, same lookup order
// as EventFromEnv.
func BranchFromEnv() string {
	for _, key := range []string{config.BranchEnvName, "GITHUB_REF_NAME", "CI_COMMIT_BRANCH"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
