package workspace

import (
	"context"
	"encoding/json"
	"net/http"

	cache "github.com/patrickmn/go-cache"
)

const jobListCacheKey = "job-list"

type jobSummary struct {
	JobID    int64 `json:"job_id"`
	Settings struct {
		Name string `json:"name"`
	} `json:"settings"`
}

type listJobsResponse struct {
	Jobs []jobSummary `json:"jobs"`
}

type resetJobRequest struct {
	JobID       int64           `json:"job_id"`
	NewSettings json.RawMessage `json:"new_settings"`
}

type runNowRequest struct {
	JobID int64 `json:"job_id"`
}

type runNowResponse struct {
	RunID int64 `json:"run_id"`
}

// DeployJobSpec resets the remote job carrying the given name to the
// provided settings, creating the job when it does not exist. The local
// definition is the source of truth.
func (c *Client) DeployJobSpec(ctx context.Context, name string, settings json.RawMessage) error {
	existing, err := c.listJobs(ctx)
	if err != nil {
		return err
	}

	if jobID, ok := existing[name]; ok {
		return c.do(ctx, http.MethodPost, jobsResetPath, nil, resetJobRequest{JobID: jobID, NewSettings: settings}, nil)
	}

	if err := c.do(ctx, http.MethodPost, jobsCreatePath, nil, settings, nil); err != nil {
		return err
	}
	c.listCache.Delete(jobListCacheKey)
	return nil
}

// TriggerJob starts one run of a pre-registered job. The returned run id
// is informational only; callers do not poll the run.
func (c *Client) TriggerJob(ctx context.Context, jobID int64) (int64, error) {
	var response runNowResponse
	if err := c.do(ctx, http.MethodPost, jobsRunNowPath, nil, runNowRequest{JobID: jobID}, &response); err != nil {
		return 0, err
	}
	return response.RunID, nil
}

func (c *Client) listJobs(ctx context.Context) (map[string]int64, error) {
	if cached, ok := c.listCache.Get(jobListCacheKey); ok {
		return cached.(map[string]int64), nil
	}

	var response listJobsResponse
	if err := c.do(ctx, http.MethodGet, jobsListPath, nil, nil, &response); err != nil {
		return nil, err
	}

	nameToID := map[string]int64{}
	for _, j := range response.Jobs {
		if j.Settings.Name == "" {
			continue
		}
		nameToID[j.Settings.Name] = j.JobID
	}
	c.listCache.Set(jobListCacheKey, nameToID, cache.DefaultExpiration)
	return nameToID, nil
}
