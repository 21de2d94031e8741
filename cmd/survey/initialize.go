package survey

import (
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/raystack/salt/log"

	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/core/pipeline"
)

// InitializeSurvey defines surveys related to init pipeline config
type InitializeSurvey struct {
	logger log.Logger
}

// NewInitializeSurvey initializes init survey
func NewInitializeSurvey(logger log.Logger) *InitializeSurvey {
	return &InitializeSurvey{
		logger: logger,
	}
}

// AskToConfirm asks the user to confirm on a message
func (*InitializeSurvey) AskToConfirm(message, help string, defaultValue bool) (bool, error) {
	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: defaultValue,
	}
	var response bool
	if err := survey.AskOne(prompt, &response); err != nil {
		return defaultValue, err
	}
	return response, nil
}

// AskInitPipeline asks the user for everything needed to scaffold a
// pipeline config with a test stage gating a deploy stage.
func (i *InitializeSurvey) AskInitPipeline() (*config.Pipeline, error) {
	name, err := i.askName()
	if err != nil {
		return nil, err
	}
	host, err := i.askHost()
	if err != nil {
		return nil, err
	}
	destinationDir, err := i.askDestinationDir()
	if err != nil {
		return nil, err
	}
	jobs, err := i.askJobs()
	if err != nil {
		return nil, err
	}

	output := &config.Pipeline{
		Version: config.DefaultVersion,
		Name:    name,
		Log: config.LogConfig{
			Level: config.LogLevelInfo,
		},
		On: config.Trigger{
			Events:   []string{pipeline.EventPush},
			Branches: []string{"main"},
		},
		Host: host,
		Project: config.Project{
			Name:         name,
			NotebookDir:  "notebooks",
			DashboardDir: "dashboards",
			JobDir:       "jobs",
		},
		Stages: []*config.Stage{
			{
				Name: "test",
				Steps: []*config.Step{
					{Name: "unit tests", Run: "make test"},
				},
			},
			{
				Name:  "deploy",
				Needs: []string{"test"},
				Deploy: &config.Deploy{
					DestinationDir: destinationDir,
					Jobs:           jobs,
				},
			},
		},
	}
	return output, nil
}

func (i *InitializeSurvey) askName() (name string, err error) {
	for {
		prompt := &survey.Input{
			Message: "What is the pipeline name?",
		}
		if err = survey.AskOne(prompt, &name); err != nil {
			return
		}
		if name != "" {
			return
		}
		i.logger.Warn("Pipeline name is empty, let's try again")
	}
}

func (*InitializeSurvey) askHost() (host string, err error) {
	prompt := &survey.Input{
		Message: "What is the workspace host url?",
		Help:    "Example - https://workspace.example.com. Leave empty to rely on " + config.HostEnvName,
	}
	err = survey.AskOne(prompt, &host)
	return
}

func (i *InitializeSurvey) askDestinationDir() (dir string, err error) {
	for {
		prompt := &survey.Input{
			Message: "Where should notebooks be imported in the workspace?",
			Help:    "Example - /Users/user@example.com",
		}
		if err = survey.AskOne(prompt, &dir); err != nil {
			return
		}
		if strings.HasPrefix(dir, "/") {
			return
		}
		i.logger.Warn("Destination must be an absolute workspace path, let's try again")
	}
}

func (i *InitializeSurvey) askJobs() ([]int64, error) {
	var output []int64
	for {
		confirmed, err := i.AskToConfirm("Do you want to trigger a workspace job after deploy?",
			"If yes, then you will be prompted for the job id", len(output) == 0)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return output, nil
		}

		prompt := &survey.Input{
			Message: "What is the job id?",
		}
		var raw string
		if err := survey.AskOne(prompt, &raw); err != nil {
			return nil, err
		}
		jobID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			i.logger.Warn("Job id must be a number, let's try again")
			continue
		}
		output = append(output, jobID)
	}
}
