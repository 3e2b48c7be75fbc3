package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"mineru-cli/internal/domain"
)

// DefaultBaseURL is the MinerU cloud service root.
const DefaultBaseURL = "https://mineru.net"

// Service endpoints, relative to the base URL.
const (
	endpointTask        = "/api/v4/extract/task"
	endpointTaskStatus  = "/api/v4/extract/task/%s"
	endpointBatchUpload = "/api/v4/file-urls/batch"
	endpointBatchURL    = "/api/v4/extract/task/batch"
	endpointBatchStatus = "/api/v4/extract-results/batch/%s"
)

const requestTimeout = 30 * time.Second

// Client calls the MinerU cloud parsing service.
type Client struct {
	baseURL  *url.URL
	token    string
	hc       *http.Client
	transfer *http.Client
}

// NewClient creates a client for the given service root and bearer token.
func NewClient(baseURL, token string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Client{
		baseURL: parsed,
		token:   token,
		hc:      &http.Client{Timeout: requestTimeout},
		// Uploads go to signed storage URLs and can be large, so they
		// are not bounded by the API request timeout.
		transfer: &http.Client{},
	}, nil
}

// envelope is the common response wrapper: code 0 means success.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do performs one JSON API call and unmarshals the envelope data into out.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Code != 0 {
		return remoteError(env.Code, env.Msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransportError{Err: fmt.Errorf("decode response data: %w", err)}
		}
	}
	return nil
}

// remoteError classifies a non-zero envelope code. Auth failures are
// detected loosely by code or message wording since the service does
// not document a stable error code set.
func remoteError(code int, msg string) error {
	if msg == "" {
		msg = "Unknown error"
	}

	lower := strings.ToLower(msg)
	if code == 401 || strings.Contains(lower, "auth") || strings.Contains(lower, "token") {
		return &AuthError{Message: msg}
	}
	return &APIError{Message: msg, Code: code}
}

// taskOptions mirrors the service's parse configuration fields.
type taskOptions struct {
	ModelVersion  string   `json:"model_version"`
	IsOCR         bool     `json:"is_ocr"`
	EnableFormula bool     `json:"enable_formula"`
	EnableTable   bool     `json:"enable_table"`
	Language      string   `json:"language"`
	PageRanges    string   `json:"page_ranges,omitempty"`
	ExtraFormats  []string `json:"extra_formats,omitempty"`
}

func buildOptions(opts domain.Options) taskOptions {
	return taskOptions{
		ModelVersion:  opts.Model,
		IsOCR:         opts.OCR,
		EnableFormula: opts.Formula,
		EnableTable:   opts.Table,
		Language:      opts.Language,
		PageRanges:    opts.PageRanges,
		ExtraFormats:  opts.ExtraFormats,
	}
}

type urlTaskRequest struct {
	URL string `json:"url"`
	taskOptions
}

type fileEntry struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type batchRequest struct {
	Files []fileEntry `json:"files"`
	taskOptions
}

type taskCreateData struct {
	TaskID string `json:"task_id"`
}

type batchUploadData struct {
	BatchID  string   `json:"batch_id"`
	FileURLs []string `json:"file_urls"`
}

type batchCreateData struct {
	BatchID string `json:"batch_id"`
}

// SubmitURLTask submits one remote document URL and returns the task ID.
func (c *Client) SubmitURLTask(ctx context.Context, rawURL string, opts domain.Options) (string, error) {
	payload := urlTaskRequest{URL: rawURL, taskOptions: buildOptions(opts)}

	var data taskCreateData
	if err := c.do(ctx, http.MethodPost, endpointTask, payload, &data); err != nil {
		return "", err
	}
	return data.TaskID, nil
}

// SubmitFileTask registers one local file for upload and returns the
// batch ID plus the signed upload URL.
func (c *Client) SubmitFileTask(ctx context.Context, name string, opts domain.Options) (string, string, error) {
	batchID, uploadURLs, err := c.SubmitBatchFiles(ctx, []string{name}, opts)
	if err != nil {
		return "", "", err
	}
	if len(uploadURLs) == 0 {
		return "", "", fmt.Errorf("service returned no upload URL")
	}
	return batchID, uploadURLs[0], nil
}

// SubmitBatchFiles registers local files for upload. The returned
// upload URLs align with the given file names by position.
func (c *Client) SubmitBatchFiles(ctx context.Context, names []string, opts domain.Options) (string, []string, error) {
	entries := make([]fileEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fileEntry{Name: name})
	}
	payload := batchRequest{Files: entries, taskOptions: buildOptions(opts)}

	var data batchUploadData
	if err := c.do(ctx, http.MethodPost, endpointBatchUpload, payload, &data); err != nil {
		return "", nil, err
	}
	return data.BatchID, data.FileURLs, nil
}

// SubmitBatchURLs submits multiple document URLs as one batch.
func (c *Client) SubmitBatchURLs(ctx context.Context, urls []string, opts domain.Options) (string, error) {
	entries := make([]fileEntry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, fileEntry{URL: u})
	}
	payload := batchRequest{Files: entries, taskOptions: buildOptions(opts)}

	var data batchCreateData
	if err := c.do(ctx, http.MethodPost, endpointBatchURL, payload, &data); err != nil {
		return "", err
	}
	return data.BatchID, nil
}

// UploadFile PUTs a local file to its signed upload URL. The upload
// request carries no auth header; the URL itself is pre-signed.
func (c *Client) UploadFile(ctx context.Context, path, uploadURL string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()

	resp, err := c.transfer.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload returned %s", resp.Status)
	}
	return nil
}

// TaskStatus fetches and normalizes the state of a single task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (domain.Job, error) {
	var job domain.Job
	path := fmt.Sprintf(endpointTaskStatus, url.PathEscape(taskID))
	if err := c.do(ctx, http.MethodGet, path, nil, &job); err != nil {
		return domain.Job{}, err
	}

	job.Normalize(domain.JobKindSingleTask)
	if job.ID == "" {
		job.ID = taskID
	}
	return job, nil
}

// BatchStatus fetches and normalizes the state of every batch member,
// preserving the service's member order.
func (c *Client) BatchStatus(ctx context.Context, batchID string) (domain.Batch, error) {
	var batch domain.Batch
	path := fmt.Sprintf(endpointBatchStatus, url.PathEscape(batchID))
	if err := c.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
		return domain.Batch{}, err
	}

	if batch.ID == "" {
		batch.ID = batchID
	}
	for i := range batch.Jobs {
		batch.Jobs[i].Normalize(domain.JobKindBatchMember)
	}
	return batch, nil
}
