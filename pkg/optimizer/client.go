package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client provides methods to interact with the optimizer's HTTP API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a new optimizer API client with the given configuration.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger.With("component", "optimizer-client"),
	}
}

// BaseURL returns the configured optimizer base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Health probes the optimizer's health endpoint. It returns nil when the
// service is reachable and answering; any error means unreachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/v1/health", nil)
	if err != nil {
		return WrapError(KindUnreachable, "Health", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(KindUnreachable, "Health", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NewError(KindUnreachable, "Health", fmt.Sprintf("health returned HTTP %d", resp.StatusCode))
	}
	return nil
}

// ImportData pushes the full export payload to the optimizer's data
// endpoint. In pull deployment mode this is a no-op: the optimizer
// fetches the data itself and the call succeeds without a request.
func (c *Client) ImportData(ctx context.Context, payload *ExportPayload) error {
	if !c.config.PushData {
		c.logger.Debug("pull mode, skipping data push", "export_id", payload.Metadata.ExportID)
		return nil
	}

	c.logger.Debug("pushing export payload",
		"export_id", payload.Metadata.ExportID,
		"courses", len(payload.Courses),
		"students", len(payload.StudentRequests),
	)

	var out struct {
		Accepted bool   `json:"accepted"`
		Message  string `json:"message"`
	}
	if err := c.post(ctx, "ImportData", "/api/v1/data", payload, &out); err != nil {
		return err
	}
	if !out.Accepted && out.Message != "" {
		return NewError(KindRejected, "ImportData", out.Message)
	}
	return nil
}

// Submit asks the optimizer to start a solve job and returns the opaque
// job identifier. A refusal (4xx) surfaces as a Rejected error.
func (c *Client) Submit(ctx context.Context, req SolveRequest) (string, error) {
	c.logger.Debug("submitting solve",
		"mode", req.OptimizationMode,
		"time_budget_s", req.OptimizationTimeSeconds,
	)

	var out SubmitResponse
	if err := c.post(ctx, "Submit", "/api/v1/solve", req, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", NewError(KindRejected, "Submit", "no job id returned")
	}

	c.logger.Info("solve submitted", "job_id", out.JobID, "mode", req.OptimizationMode)
	return out.JobID, nil
}

// Status fetches one status snapshot for the given job.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	var out JobStatus
	if err := c.get(ctx, "Status", "/api/v1/solve/"+jobID, &out); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.JobID = jobID
		}
		return nil, err
	}
	if out.JobID == "" {
		out.JobID = jobID
	}
	return &out, nil
}

// Result fetches the full solution for a succeeded job.
func (c *Client) Result(ctx context.Context, jobID string) (*SolveResult, error) {
	var out SolveResult
	if err := c.get(ctx, "Result", "/api/v1/solve/"+jobID+"/result", &out); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.JobID = jobID
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return WrapError(KindInternal, op, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return WrapError(KindInternal, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(op, req, out)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return WrapError(KindInternal, op, err)
	}
	return c.doRequest(op, req, out)
}

// doRequest performs a single HTTP round-trip and decodes the response.
// 4xx responses map to Rejected, everything else non-2xx to Internal.
func (c *Client) doRequest(op string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(KindUnreachable, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(KindInternal, op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
		kind := KindInternal
		if httpErr.IsRejection() {
			kind = KindRejected
		}
		return WrapError(kind, op, httpErr)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return WrapError(KindInternal, op, fmt.Errorf("unmarshaling response: %w", err))
	}
	return nil
}
