package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Client is a Go SDK for the readiness-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new readiness-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is returned when the server answers with an error envelope
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

// IngestResult reports how many entries an ingest call added
type IngestResult struct {
	Added int `json:"added"`
	Total int `json:"total"`
}

// SelectScenarios returns three scenarios for a role and skill level
func (c *Client) SelectScenarios(ctx context.Context, role, skillLevel string) ([]models.Scenario, error) {
	var data struct {
		Scenarios []models.Scenario `json:"scenarios"`
	}
	body := map[string]string{"role": role, "skill_level": skillLevel}
	if err := c.postJSON(ctx, "/api/v1/scenarios/select", body, &data); err != nil {
		return nil, err
	}
	return data.Scenarios, nil
}

// AddScenarios appends scenarios to the server catalog
func (c *Client) AddScenarios(ctx context.Context, items []models.Scenario) (*IngestResult, error) {
	var out IngestResult
	if err := c.postJSON(ctx, "/api/v1/scenarios", items, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddResources appends training resources to the server catalog
func (c *Client) AddResources(ctx context.Context, items []models.TrainingResource) (*IngestResult, error) {
	var out IngestResult
	if err := c.postJSON(ctx, "/api/v1/resources", items, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadScenariosCSV uploads a scenario CSV export
func (c *Client) UploadScenariosCSV(ctx context.Context, filename string, r io.Reader) (*IngestResult, error) {
	return c.uploadCSV(ctx, "/api/v1/scenarios/upload", filename, r)
}

// UploadResourcesCSV uploads a training resource CSV export
func (c *Client) UploadResourcesCSV(ctx context.Context, filename string, r io.Reader) (*IngestResult, error) {
	return c.uploadCSV(ctx, "/api/v1/resources/upload", filename, r)
}

// RunSimulation submits a response and returns the full result
func (c *Client) RunSimulation(ctx context.Context, student models.StudentProfile, sub models.Submission) (*models.SimulationResult, error) {
	var out models.SimulationResult
	body := map[string]interface{}{"student": student, "submission": sub}
	if err := c.postJSON(ctx, "/api/v1/simulations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", "", nil)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return decodeData(resp, out)
}

func (c *Client) uploadCSV(ctx context.Context, path, filename string, r io.Reader) (*IngestResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var out IngestResult
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeData(resp []byte, out interface{}) error {
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request. Error envelopes become *APIError.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return nil, envelope.Error
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
