package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OCRClient talks to the OCR/bank-statement microservice. The service is
// consumed as an opaque collaborator; no token is required.
type OCRClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOCRClient creates a client for the OCR microservice. The long timeout
// accommodates slow OCR passes over large statements.
func NewOCRClient(baseURL string) *OCRClient {
	return &OCRClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// StatementResult is the OCR service's verdict on an uploaded statement.
type StatementResult struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Cached  bool            `json:"cached"`
	Result  json.RawMessage `json:"result"`
}

// ReadBankStatement uploads a statement PDF for OCR extraction. password
// unlocks protected documents and may be empty.
func (c *OCRClient) ReadBankStatement(ctx context.Context, filename string, file io.Reader, password string) (*StatementResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read statement file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	u := c.baseURL + "/bankstatementreader/mistral-ocr/"
	if password != "" {
		q := url.Values{}
		q.Set("password", password)
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statement upload failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ocr response: %w", err)
	}

	var result StatementResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: result.Message}
	}
	return &result, nil
}

// OCRTask is one queued or finished extraction job on the OCR service.
type OCRTask struct {
	TaskID    string `json:"task_id"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ListTasks returns the service's recent extraction jobs.
func (c *OCRClient) ListTasks(ctx context.Context) ([]OCRTask, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bankstatementreader/tasks/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create task list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("task list failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read task list response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var tasks []OCRTask
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode task list: %w", err)
	}
	return tasks, nil
}
