package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/skiffhq/skiff/core/deploy"
)

type jobSpecRepository struct {
	fs   afero.Fs
	root string
	dir  string
}

// NewJobSpecRepository scans dir (relative to root) for job definition
// files (*.json). The definition's name field identifies the remote job
// to reset or create.
func NewJobSpecRepository(fs afero.Fs, root, dir string) *jobSpecRepository {
	return &jobSpecRepository{
		fs:   fs,
		root: root,
		dir:  dir,
	}
}

func (repo *jobSpecRepository) GetAll(_ context.Context) ([]deploy.JobSpec, error) {
	entries, err := afero.ReadDir(repo.fs, filepath.Join(repo.root, repo.dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, deploy.ErrNoJobSpecs
		}
		return nil, err
	}

	var jobSpecs []deploy.JobSpec
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") ||
			strings.HasSuffix(entry.Name(), dashboardFileSuffix) {
			continue
		}

		filePath := filepath.Join(repo.root, repo.dir, entry.Name())
		content, err := afero.ReadFile(repo.fs, filePath)
		if err != nil {
			return nil, err
		}

		name, err := jobSpecName(content)
		if err != nil {
			return nil, fmt.Errorf("error parsing job spec in %s: %w", filePath, err)
		}

		jobSpecs = append(jobSpecs, deploy.JobSpec{
			Name:     name,
			Settings: json.RawMessage(content),
		})
	}

	if len(jobSpecs) == 0 {
		return nil, deploy.ErrNoJobSpecs
	}
	sort.Slice(jobSpecs, func(i, j int) bool {
		return jobSpecs[i].Name < jobSpecs[j].Name
	})
	return jobSpecs, nil
}

// jobSpecName digs the job name out of a definition, accepting both the
// flat layout and the api response layout with a settings envelope.
func jobSpecName(content []byte) (string, error) {
	var probe struct {
		Name     string `json:"name"`
		Settings struct {
			Name string `json:"name"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return "", err
	}
	if probe.Name != "" {
		return probe.Name, nil
	}
	if probe.Settings.Name != "" {
		return probe.Settings.Name, nil
	}
	return "", fmt.Errorf("job definition is missing a name")
}
