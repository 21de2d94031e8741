package config_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/skiffhq/skiff/config"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidatePipelineConfig() {
	s.Run("WhenConfigIsValid", func() {
		err := config.ValidatePipelineConfig(validPipelineConfig())
		s.Assert().NoError(err)
	})

	s.Run("WhenNameIsEmpty", func() {
		conf := validPipelineConfig()
		conf.Name = ""

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenLogLevelIsUnknown", func() {
		conf := validPipelineConfig()
		conf.Log.Level = "LOUD"

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenStagesAreEmpty", func() {
		conf := validPipelineConfig()
		conf.Stages = nil

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenStagesAreDuplicated", func() {
		conf := validPipelineConfig()
		conf.Stages = append(conf.Stages, &config.Stage{
			Name:  "test",
			Steps: []*config.Step{{Run: "true"}},
		})

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenStageHasStepsAndDeploy", func() {
		conf := validPipelineConfig()
		conf.Stages[1].Steps = []*config.Step{{Run: "true"}}

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenStageHasNeitherStepsNorDeploy", func() {
		conf := validPipelineConfig()
		conf.Stages[0].Steps = nil

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenNeedsReferencesLaterStage", func() {
		conf := validPipelineConfig()
		conf.Stages[0].Needs = []string{"deploy"}

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenNeedsReferencesUnknownStage", func() {
		conf := validPipelineConfig()
		conf.Stages[1].Needs = []string{"lint"}

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenStepHasNoRunCommand", func() {
		conf := validPipelineConfig()
		conf.Stages[0].Steps = []*config.Step{{Name: "broken"}}

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})

	s.Run("WhenSeveralStagesAreBrokenAllAreReported", func() {
		conf := validPipelineConfig()
		conf.Stages[0].Steps = []*config.Step{{Name: "broken"}}
		conf.Stages[1].Deploy.DestinationDir = ""

		err := config.ValidatePipelineConfig(conf)
		s.Require().Error(err)
		s.Assert().Contains(err.Error(), "stage [test] has a step without a run command")
		s.Assert().Contains(err.Error(), "stage [deploy] deploy section needs a destination_dir")
	})

	s.Run("WhenDeployHasNoDestinationDir", func() {
		conf := validPipelineConfig()
		conf.Stages[1].Deploy.DestinationDir = " "

		err := config.ValidatePipelineConfig(conf)
		s.Assert().Error(err)
	})
}

func (s *ValidationTestSuite) TestStageAccessors() {
	s.Run("GetStageByName", func() {
		conf := validPipelineConfig()

		stage, err := conf.GetStageByName("deploy")
		s.Require().NoError(err)
		s.Assert().Equal("deploy", stage.Name)

		_, err = conf.GetStageByName("lint")
		s.Assert().Error(err)
	})

	s.Run("ValidateStageNames", func() {
		conf := validPipelineConfig()

		s.Assert().NoError(conf.ValidateStageNames("test", "deploy"))
		s.Assert().Error(conf.ValidateStageNames("test", "lint"))
	})

	s.Run("GetAllStageNames", func() {
		conf := validPipelineConfig()
		s.Assert().Equal([]string{"test", "deploy"}, conf.GetAllStageNames())
	})
}

func (s *ValidationTestSuite) TestShouldOverwrite() {
	s.Run("WhenOverwriteIsUnset", func() {
		d := &config.Deploy{}
		s.Assert().True(d.ShouldOverwrite())
	})

	s.Run("WhenOverwriteIsFalse", func() {
		overwrite := false
		d := &config.Deploy{Overwrite: &overwrite}
		s.Assert().False(d.ShouldOverwrite())
	})
}

func validPipelineConfig() *config.Pipeline {
	return &config.Pipeline{
		Version: config.Version(1),
		Name:    "analytics-ci",
		Log:     config.LogConfig{Level: config.LogLevelInfo},
		Host:    "https://workspace.example.com",
		Project: config.Project{Name: "analytics"},
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
					DestinationDir: "/Users/user@example.com",
					Jobs:           []int64{12345},
				},
			},
		},
	}
}
