package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// HostEnvName carries the workspace host url, injected by the CI host
	HostEnvName = "SKIFF_HOST"
	// TokenEnvName carries the workspace access token, injected by the CI
	// host's secret store. The value is opaque and must never be logged
	// or written back to disk.
	TokenEnvName = "SKIFF_TOKEN"

	EventEnvName  = "SKIFF_EVENT"
	BranchEnvName = "SKIFF_BRANCH"
)

type Pipeline struct {
	Version Version   `mapstructure:"version" yaml:"version"`
	Name    string    `mapstructure:"name" yaml:"name"`
	Log     LogConfig `mapstructure:"log" yaml:"log,omitempty"`
	On      Trigger   `mapstructure:"on" yaml:"on,omitempty"`
	Host    string    `mapstructure:"host" yaml:"host,omitempty"` // workspace host url
	Project Project   `mapstructure:"project" yaml:"project"`
	Stages  []*Stage  `mapstructure:"stages" yaml:"stages"`

	stageNameToStage map[string]*Stage
}

// Trigger filters which CI events are allowed to run the pipeline.
// Empty lists match everything.
type Trigger struct {
	Events   []string `mapstructure:"events" yaml:"events,omitempty"`
	Branches []string `mapstructure:"branches" yaml:"branches,omitempty"`
}

type Project struct {
	Name         string `mapstructure:"name" yaml:"name"`
	NotebookDir  string `mapstructure:"notebook_dir" yaml:"notebook_dir" default:"notebooks"`
	DashboardDir string `mapstructure:"dashboard_dir" yaml:"dashboard_dir" default:"dashboards"`
	JobDir       string `mapstructure:"job_dir" yaml:"job_dir" default:"jobs"`
}

// Stage is either an exec stage (Steps) or a deploy stage (Deploy),
// never both
type Stage struct {
	Name   string   `mapstructure:"name" yaml:"name"`
	Needs  []string `mapstructure:"needs" yaml:"needs,omitempty"`
	Steps  []*Step  `mapstructure:"steps" yaml:"steps,omitempty"`
	Deploy *Deploy  `mapstructure:"deploy" yaml:"deploy,omitempty"`
}

type Step struct {
	Name string            `mapstructure:"name" yaml:"name"`
	Run  string            `mapstructure:"run" yaml:"run"`
	Env  map[string]string `mapstructure:"env" yaml:"env,omitempty"`
}

type Deploy struct {
	DestinationDir string  `mapstructure:"destination_dir" yaml:"destination_dir"`
	Overwrite      *bool   `mapstructure:"overwrite" yaml:"overwrite,omitempty"` // nil means true
	Jobs           []int64 `mapstructure:"jobs" yaml:"jobs,omitempty"`
}

// ShouldOverwrite resolves the overwrite flag, defaulting to true so a
// re-deploy converges on the same remote state instead of failing on
// collisions.
func (d *Deploy) ShouldOverwrite() bool {
	if d.Overwrite == nil {
		return true
	}
	return *d.Overwrite
}

func (p *Pipeline) GetStageByName(name string) (*Stage, error) {
	if p.stageNameToStage == nil {
		p.buildDictionary()
	}

	if p.stageNameToStage[name] == nil {
		return nil, fmt.Errorf("stage [%s] is not found", name)
	}

	return p.stageNameToStage[name], nil
}

func (p *Pipeline) ValidateStageNames(stageNames ...string) error {
	if p.stageNameToStage == nil {
		p.buildDictionary()
	}

	var invalidNames []string
	for _, n := range stageNames {
		if p.stageNameToStage[n] == nil {
			invalidNames = append(invalidNames, n)
		}
	}
	var err error
	if len(invalidNames) > 0 {
		err = fmt.Errorf("stage names [%s] are invalid", strings.Join(invalidNames, ", "))
	}
	return err
}

func (p *Pipeline) GetAllStageNames() []string {
	output := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		output[i] = s.Name
	}
	return output
}

func (p *Pipeline) buildDictionary() {
	p.stageNameToStage = map[string]*Stage{}
	for _, stage := range p.Stages {
		if stage == nil {
			continue
		}
		p.stageNameToStage[stage.Name] = stage
	}
}

// LoadAccessToken reads the workspace token from the environment. It is
// intentionally not part of the Pipeline struct so it can never leak into
// a marshalled config file.
func LoadAccessToken() string {
	return strings.TrimSpace(os.Getenv(TokenEnvName))
}
