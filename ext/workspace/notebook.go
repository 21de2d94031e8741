package workspace

import (
	"context"
	"encoding/base64"
	"net/http"
)

type importNotebookRequest struct {
	Path      string `json:"path"`
	Language  string `json:"language,omitempty"`
	Format    string `json:"format,omitempty"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite"`
}

// ImportNotebook uploads one notebook to the given workspace path. With
// overwrite set, an existing object at that path is replaced, which
// makes repeated imports of identical input converge on the same remote
// state.
func (c *Client) ImportNotebook(ctx context.Context, remotePath, language, format string, content []byte, overwrite bool) error {
	payload := importNotebookRequest{
		Path:      remotePath,
		Language:  language,
		Format:    format,
		Content:   base64.StdEncoding.EncodeToString(content),
		Overwrite: overwrite,
	}
	return c.do(ctx, http.MethodPost, workspaceImportPath, nil, payload, nil)
}
