package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"codeberg.org/snonux/lexicall/internal/pack"
)

// submitRequest is the body of POST /jobs
type submitRequest struct {
	Operation string `json:"operation"`
	Params    any    `json:"params,omitempty"`
}

// SubmitJob submits a fire-and-forget generation job and returns its initial
// status. The request itself is bounded by the per-call timeout; the job's
// processing time is not.
func (c *Client) SubmitJob(ctx context.Context, operation string, params any) (*JobStatus, error) {
	var status JobStatus
	req := submitRequest{Operation: operation, Params: params}
	if err := c.doJSON(ctx, http.MethodPost, "/jobs", req, &status); err != nil {
		return nil, fmt.Errorf("failed to submit %s job: %w", operation, err)
	}
	if status.JobID == "" {
		return nil, fmt.Errorf("backend returned no job id for %s job", operation)
	}
	return &status, nil
}

// GetJob polls the status of a previously submitted job
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobStatus, error) {
	var status JobStatus
	path := "/jobs/" + url.PathEscape(jobID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// LookupWord looks up lightweight metadata for a word. A missing word is a
// well-formed result with Found set to false, not an error.
func (c *Client) LookupWord(ctx context.Context, key string) (*LookupResult, error) {
	var result LookupResult
	path := "/lookup/" + url.PathEscape(key)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPack fetches the full representation of a vocabulary pack
func (c *Client) GetPack(ctx context.Context, packID string) (*pack.VocabPack, error) {
	var p pack.VocabPack
	path := "/packs/" + url.PathEscape(packID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePack creates a pack synchronously through the direct entity endpoint.
// Only usable for small requests that fit within the gateway's request
// ceiling; anything bigger goes through SubmitJob.
func (c *Client) CreatePack(ctx context.Context, req *pack.GenerateRequest) (*pack.VocabPack, error) {
	var p pack.VocabPack
	if err := c.doJSON(ctx, http.MethodPost, "/packs", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetArticle fetches an imported article
func (c *Client) GetArticle(ctx context.Context, articleID string) (*pack.Article, error) {
	var a pack.Article
	path := "/articles/" + url.PathEscape(articleID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
