package initialize

import (
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/raystack/salt/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skiffhq/skiff/cmd/logger"
	"github.com/skiffhq/skiff/cmd/survey"
	"github.com/skiffhq/skiff/config"
	"github.com/skiffhq/skiff/internal/utils"
)

type initializeCommand struct {
	logger     log.Logger
	initSurvey *survey.InitializeSurvey

	dirPath string
}

// NewInitializeCommand initializes command to interactively initialize pipeline config
func NewInitializeCommand() *cobra.Command {
	l := logger.NewDefaultLogger()
	initialize := &initializeCommand{
		logger:     l,
		initSurvey: survey.NewInitializeSurvey(l),
	}
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Interactively initialize skiff pipeline config",
		Example: "skiff init [--dir]",
		RunE:    initialize.RunE,
	}
	cmd.Flags().StringVar(&initialize.dirPath, "dir", initialize.dirPath, "Directory where the pipeline config will be stored")
	return cmd
}

func (i *initializeCommand) RunE(_ *cobra.Command, _ []string) error {
	filePath := i.getPipelineConfigPath()

	pathOccupied, err := utils.IsPathOccupied(filePath)
	if err != nil {
		return err
	}
	if pathOccupied {
		confirmMessage := fmt.Sprintf("Path [%s] already exist, do you want to replace?", filePath)
		confirmHelp := "If yes, then targeted file will be replaced"
		confirmedToReplace, err := i.initSurvey.AskToConfirm(confirmMessage, confirmHelp, false)
		if err != nil {
			return err
		}
		if !confirmedToReplace {
			i.logger.Info("Confirmed NOT to replace, exiting process")
			return nil
		}
	}

	pipelineConfig, err := i.initSurvey.AskInitPipeline()
	if err != nil {
		return err
	}

	if err := i.initPipelineConfig(pipelineConfig); err != nil {
		return err
	}
	i.logger.Info("Pipeline config is initialized successfully")
	i.logger.Info(fmt.Sprintf("If you want to modify, go to [%s]", filePath))
	return nil
}

func (i *initializeCommand) initPipelineConfig(pipelineConfig *config.Pipeline) error {
	if err := i.setupArtifactDirs(pipelineConfig); err != nil {
		return err
	}
	marshalledConfig, err := yaml.Marshal(pipelineConfig)
	if err != nil {
		return err
	}
	filePermission := 0o660
	return os.WriteFile(i.getPipelineConfigPath(), marshalledConfig, fs.FileMode(filePermission))
}

func (i *initializeCommand) setupArtifactDirs(pipelineConfig *config.Pipeline) error {
	directoryPermission := 0o750
	dirs := []string{
		pipelineConfig.Project.NotebookDir,
		pipelineConfig.Project.DashboardDir,
		pipelineConfig.Project.JobDir,
	}
	for _, d := range dirs {
		dirPath := path.Join(i.dirPath, d)
		if err := os.MkdirAll(dirPath, fs.FileMode(directoryPermission)); err != nil {
			return fmt.Errorf("error creating [%s]: %w", dirPath, err)
		}
	}
	return nil
}

func (i *initializeCommand) getPipelineConfigPath() string {
	fileName := fmt.Sprintf("%s.%s", config.DefaultFilename, config.DefaultFileExtension)
	return path.Join(i.dirPath, fileName)
}
