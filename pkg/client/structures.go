package client

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
)

// StructuresClient calls the exported-structure endpoints.
type StructuresClient struct {
	client *Client
}

// ListResponse holds the downloadable structure files on the server.
type ListResponse struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// List returns the structure files available for download.
func (sc *StructuresClient) List(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := sc.client.get(ctx, "/api/v1/structures", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Download fetches one exported structure file by name and returns its raw
// contents.
func (sc *StructuresClient) Download(ctx context.Context, filename string) ([]byte, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("client: invalid file name %q", filename)
	}
	return sc.client.getRaw(ctx, "/api/v1/structures/"+url.PathEscape(filename))
}
