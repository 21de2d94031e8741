package workspace

import (
	"context"
	"net/http"

	cache "github.com/patrickmn/go-cache"
)

const dashboardListCacheKey = "dashboard-list"

type dashboardSummary struct {
	DashboardID string `json:"dashboard_id"`
	DisplayName string `json:"display_name"`
}

type listDashboardsResponse struct {
	Dashboards []dashboardSummary `json:"dashboards"`
}

// DeployDashboard updates the dashboard carrying the given display name,
// creating it when no such dashboard exists yet.
func (c *Client) DeployDashboard(ctx context.Context, name string, payload map[string]interface{}) error {
	existing, err := c.listDashboards(ctx)
	if err != nil {
		return err
	}

	if dashboardID, ok := existing[name]; ok {
		return c.do(ctx, http.MethodPatch, dashboardsPath+"/"+dashboardID, nil, payload, nil)
	}

	if err := c.do(ctx, http.MethodPost, dashboardsPath, nil, payload, nil); err != nil {
		return err
	}
	c.listCache.Delete(dashboardListCacheKey)
	return nil
}

func (c *Client) listDashboards(ctx context.Context) (map[string]string, error) {
	if cached, ok := c.listCache.Get(dashboardListCacheKey); ok {
		return cached.(map[string]string), nil
	}

	var response listDashboardsResponse
	if err := c.do(ctx, http.MethodGet, dashboardsPath, nil, nil, &response); err != nil {
		return nil, err
	}

	nameToID := map[string]string{}
	for _, d := range response.Dashboards {
		if d.DashboardID == "" {
			continue
		}
		nameToID[d.DisplayName] = d.DashboardID
	}
	c.listCache.Set(dashboardListCacheKey, nameToID, cache.DefaultExpiration)
	return nameToID, nil
}
