package pipeline

import (
	"fmt"
	"strings"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/internal/errors"
)

type StageKind string

const (
	StageKindExec   StageKind = "exec"
	StageKindDeploy StageKind = "deploy"
)

type Pipeline struct {
	Name    string
	Trigger Trigger
	Stages  []*Stage
}

type Stage struct {
	Name   string
	Kind   StageKind
	Needs  []string
	Steps  []*Step
	Deploy *DeploySpec
}

type Step struct {
	Name string
	Run  string
	Env  map[string]string
}

type DeploySpec struct {
	DestinationDir string
	Overwrite      bool
	Jobs           []int64
}

// FromConfig maps the declarative pipeline config into domain types.
// Stages keep their declared order; needs may only point backwards, so
// the declared order is always a valid execution order.
func FromConfig(conf *config.Pipeline) (*Pipeline, error) {
	if conf == nil {
		return nil, errors.NewInvalidArgumentError(errors.EntityPipeline, "pipeline config is nil")
	}

	p := &Pipeline{
		Name: conf.Name,
		Trigger: Trigger{
			Events:   conf.On.Events,
			Branches: conf.On.Branches,
		},
	}

	var declared []string
	for _, stageConf := range conf.Stages {
		stage, err := stageFromConfig(stageConf, declared)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, stage)
		declared = append(declared, stage.Name)
	}
	if len(p.Stages) == 0 {
		return nil, errors.NewInvalidArgumentError(errors.EntityPipeline, "pipeline has no stages")
	}
	return p, nil
}

func stageFromConfig(conf *config.Stage, declared []string) (*Stage, error) {
	if conf == nil || strings.TrimSpace(conf.Name) == "" {
		return nil, errors.NewInvalidArgumentError(errors.EntityStage, "stage name is empty")
	}
	for _, need := range conf.Needs {
		if !containsName(declared, need) {
			msg := fmt.Sprintf("stage [%s] needs unknown or later stage [%s]", conf.Name, need)
			return nil, errors.NewInvalidArgumentError(errors.EntityStage, msg)
		}
	}

	stage := &Stage{
		Name:  conf.Name,
		Needs: conf.Needs,
	}
	switch {
	case conf.Deploy != nil:
		stage.Kind = StageKindDeploy
		stage.Deploy = &DeploySpec{
			DestinationDir: conf.Deploy.DestinationDir,
			Overwrite:      conf.Deploy.ShouldOverwrite(),
			Jobs:           conf.Deploy.Jobs,
		}
	case len(conf.Steps) > 0:
		stage.Kind = StageKindExec
		for _, stepConf := range conf.Steps {
			stage.Steps = append(stage.Steps, &Step{
				Name: stepConf.Name,
				Run:  stepConf.Run,
				Env:  stepConf.Env,
			})
		}
	default:
		msg := fmt.Sprintf("stage [%s] has neither steps nor a deploy section", conf.Name)
		return nil, errors.NewInvalidArgumentError(errors.EntityStage, msg)
	}
	return stage, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// PlanRow is a single line of the dry-run execution plan.
type PlanRow struct {
	Stage  string
	Kind   StageKind
	Needs  []string
	Detail string
}

// Plan renders the ordered execution plan without running anything.
func (p *Pipeline) Plan() []PlanRow {
	var rows []PlanRow
	for _, stage := range p.Stages {
		row := PlanRow{
			Stage: stage.Name,
			Kind:  stage.Kind,
			Needs: stage.Needs,
		}
		if stage.Kind == StageKindDeploy {
			row.Detail = fmt.Sprintf("import to [%s], trigger jobs %v", stage.Deploy.DestinationDir, stage.Deploy.Jobs)
		} else {
			names := make([]string, len(stage.Steps))
			for i, s := range stage.Steps {
				if s.Name != "" {
					names[i] = s.Name
				} else {
					names[i] = s.Run
				}
			}
			row.Detail = strings.Join(names, ", ")
		}
		rows = append(rows, row)
	}
	return rows
}
