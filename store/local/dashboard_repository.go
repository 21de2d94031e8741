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

const dashboardFileSuffix = ".lvdash.json"

type dashboardRepository struct {
	fs   afero.Fs
	root string
	dir  string
}

// NewDashboardRepository scans dir (relative to root) for dashboard
// definition files (*.lvdash.json).
func NewDashboardRepository(fs afero.Fs, root, dir string) *dashboardRepository {
	return &dashboardRepository{
		fs:   fs,
		root: root,
		dir:  dir,
	}
}

func (repo *dashboardRepository) GetAll(_ context.Context) ([]deploy.Dashboard, error) {
	entries, err := afero.ReadDir(repo.fs, filepath.Join(repo.root, repo.dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, deploy.ErrNoDashboards
		}
		return nil, err
	}

	var dashboards []deploy.Dashboard
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dashboardFileSuffix) {
			continue
		}

		filePath := filepath.Join(repo.root, repo.dir, entry.Name())
		content, err := afero.ReadFile(repo.fs, filePath)
		if err != nil {
			return nil, err
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(content, &payload); err != nil {
			return nil, fmt.Errorf("error parsing dashboard spec in %s: %w", filePath, err)
		}

		// the filename, double extension stripped, is the display name
		name := strings.TrimSuffix(entry.Name(), dashboardFileSuffix)
		payload["display_name"] = name

		dashboards = append(dashboards, deploy.Dashboard{
			Name:    name,
			Payload: payload,
		})
	}

	if len(dashboards) == 0 {
		return nil, deploy.ErrNoDashboards
	}
	sort.Slice(dashboards, func(i, j int) bool {
		return dashboards[i].Name < dashboards[j].Name
	})
	return dashboards, nil
}
