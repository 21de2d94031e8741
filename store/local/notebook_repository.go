package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/skiffhq/skiff/core/deploy"
)

const notebookSidecarSuffix = ".skiff.yaml"

// notebookKinds maps file extensions to the workspace import language
// and format. Anything else in the notebook dir is ignored.
var notebookKinds = map[string]struct {
	Language string
	Format   string
}{
	".py":    {Language: "PYTHON", Format: "SOURCE"},
	".ipynb": {Language: "PYTHON", Format: "JUPYTER"},
	".sql":   {Language: "SQL", Format: "SOURCE"},
	".scala": {Language: "SCALA", Format: "SOURCE"},
	".r":     {Language: "R", Format: "SOURCE"},
}

// notebookSidecar is the optional per-notebook override file, named
// <base>.skiff.yaml next to the notebook itself.
type notebookSidecar struct {
	Destination string `yaml:"destination"`
	Language    string `yaml:"language"`
	Format      string `yaml:"format"`
}

type notebookRepository struct {
	fs   afero.Fs
	root string
	dir  string
}

// NewNotebookRepository scans dir (relative to root) for notebook files.
func NewNotebookRepository(fs afero.Fs, root, dir string) *notebookRepository {
	return &notebookRepository{
		fs:   fs,
		root: root,
		dir:  dir,
	}
}

func (repo *notebookRepository) GetAll(_ context.Context) ([]deploy.Notebook, error) {
	entries, err := afero.ReadDir(repo.fs, filepath.Join(repo.root, repo.dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, deploy.ErrNoNotebooks
		}
		return nil, err
	}

	var notebooks []deploy.Notebook
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), notebookSidecarSuffix) {
			continue
		}
		kind, ok := notebookKinds[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		notebook := deploy.Notebook{
			Name:      base,
			LocalPath: filepath.Join(repo.dir, entry.Name()),
			Language:  kind.Language,
			Format:    kind.Format,
		}
		if err := repo.applySidecar(base, &notebook); err != nil {
			return nil, err
		}
		notebooks = append(notebooks, notebook)
	}

	if len(notebooks) == 0 {
		return nil, deploy.ErrNoNotebooks
	}
	sort.Slice(notebooks, func(i, j int) bool {
		return notebooks[i].Name < notebooks[j].Name
	})
	return notebooks, nil
}

func (repo *notebookRepository) GetByName(ctx context.Context, name string) (deploy.Notebook, error) {
	if strings.TrimSpace(name) == "" {
		return deploy.Notebook{}, fmt.Errorf("notebook name cannot be an empty string")
	}
	notebooks, err := repo.GetAll(ctx)
	if err != nil {
		return deploy.Notebook{}, err
	}
	for _, nb := range notebooks {
		if nb.Name == name {
			return nb, nil
		}
	}
	return deploy.Notebook{}, deploy.ErrNoSuchSpec
}

func (repo *notebookRepository) applySidecar(base string, notebook *deploy.Notebook) error {
	sidecarPath := filepath.Join(repo.root, repo.dir, base+notebookSidecarSuffix)
	content, err := afero.ReadFile(repo.fs, sidecarPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var sidecar notebookSidecar
	if err := yaml.Unmarshal(content, &sidecar); err != nil {
		return fmt.Errorf("error parsing notebook spec in %s: %w", sidecarPath, err)
	}
	if sidecar.Destination != "" {
		notebook.Destination = sidecar.Destination
	}
	if sidecar.Language != "" {
		notebook.Language = sidecar.Language
	}
	if sidecar.Format != "" {
		notebook.Format = sidecar.Format
	}
	return nil
}
