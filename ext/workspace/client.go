package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/skiffhq/skiff/internal/errors"
)

const (
	workspaceStatusPath = "/api/2.0/workspace/get-status"
	workspaceImportPath = "/api/2.0/workspace/import"
	dashboardsPath      = "/api/2.0/lakeview/dashboards"
	jobsListPath        = "/api/2.1/jobs/list"
	jobsCreatePath      = "/api/2.1/jobs/create"
	jobsResetPath       = "/api/2.1/jobs/reset"
	jobsRunNowPath      = "/api/2.1/jobs/run-now"

	requestTimeout = 30 * time.Second

	// remote listings are cached briefly so deploying many artifacts in
	// one stage lists the workspace once
	listCacheTTL = 30 * time.Second
)

// Client talks to the analytics workspace over its REST surface. A
// client can only be constructed with a non-empty host and token, so no
// remote call ever goes out unconfigured.
type Client struct {
	host  string
	token string

	httpClient *http.Client
	listCache  *cache.Cache
}

func NewClient(host, token string) (*Client, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return nil, errors.NewInvalidArgumentError(errors.EntityWorkspace, "workspace host is empty")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.NewInvalidArgumentError(errors.EntityWorkspace, "workspace access token is empty")
	}
	parsed, err := url.Parse(host)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewInvalidArgumentError(errors.EntityWorkspace,
			fmt.Sprintf("workspace host [%s] is not a valid url", host))
	}

	return &Client{
		host:       host,
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
		listCache:  cache.New(listCacheTTL, listCacheTTL),
	}, nil
}

// VerifyCredentials makes a cheap authenticated read against the
// workspace root. A rejection here aborts the deploy stage before any
// remote mutation happens.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	query := url.Values{}
	query.Set("path", "/")
	return c.do(ctx, http.MethodGet, workspaceStatusPath, query, nil, nil)
}

func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body, out interface{}) error {
	if ctx == nil {
		return errors.NewInvalidArgumentError(errors.EntityWorkspace, "context is nil")
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternalError(errors.EntityWorkspace, "error encoding request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.host+apiPath, reader)
	if err != nil {
		return errors.NewInternalError(errors.EntityWorkspace, "error encountered when constructing request", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return errors.NewInternalError(errors.EntityWorkspace, "error encountered when sending request", err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return errors.NewInvalidArgumentError(errors.EntityWorkspace,
			fmt.Sprintf("workspace rejected the credentials: %s", response.Status))
	case response.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError(errors.EntityWorkspace,
			"requested workspace resource is not found", nil)
	case response.StatusCode < 200 || response.StatusCode >= 300:
		return errors.NewInternalError(errors.EntityWorkspace,
			fmt.Sprintf("unexpected status response: %s", response.Status), nil)
	}

	if out != nil {
		decoder := json.NewDecoder(response.Body)
		if err := decoder.Decode(out); err != nil {
			return errors.NewInternalError(errors.EntityWorkspace, "error decoding response", err)
		}
	}
	return nil
}
