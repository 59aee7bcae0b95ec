package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/thanakrit/ledgerctl/internal/model"
)

// PDF job kinds, one per report family. Each kind expands into the
// submit/check/download endpoint triple on the report service.
const (
	PDFJournalVat         = "journalvat"
	PDFJournalTax         = "journaltax"
	PDFJournalTaxDeduct   = "journaltaxdeduct"
	PDFAccountsPayable    = "accountspayable"
	PDFAccountsReceivable = "accountsreceivable"
)

// ReportClient talks to the report-generation service, which renders PDFs
// through asynchronous jobs.
type ReportClient struct {
	inner *Client
}

// NewReportClient creates a client for the report-generation service.
func NewReportClient(baseURL string, opts ...Option) *ReportClient {
	return &ReportClient{inner: NewClient(baseURL, opts...)}
}

// Generate submits a PDF rendering job. A server-acknowledged failure
// (success=false) is returned as *APIError carrying the server's message
// and is never retried.
func (c *ReportClient) Generate(ctx context.Context, kind string, params url.Values) (model.PDFJob, error) {
	env, err := c.inner.do(ctx, http.MethodPost, "/apireport/"+kind+"/genpdf", params, nil)
	if err != nil {
		return model.PDFJob{}, fmt.Errorf("failed to submit pdf job: %w", err)
	}
	if !env.Success {
		return model.PDFJob{}, &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}
	var job model.PDFJob
	if err := decodeData(env, &job); err != nil {
		return model.PDFJob{}, err
	}
	if job.JobID == "" {
		return model.PDFJob{}, fmt.Errorf("pdf job submitted without a job id")
	}
	job.Status = model.PDFJobPending
	return job, nil
}

// Check polls a job once. done=true means the document is ready for
// download. An HTTP 500 surfaces as *APIError so the poller can apply its
// slow-server backoff.
func (c *ReportClient) Check(ctx context.Context, kind string, job model.PDFJob) (bool, error) {
	q := url.Values{}
	q.Set("jobid", job.JobID)
	q.Set("filename", job.FileName)

	env, err := c.inner.do(ctx, http.MethodGet, "/apireport/"+kind+"/checkpdf", q, nil)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}

// DownloadURL builds the browsable URL for a finished job.
func (c *ReportClient) DownloadURL(kind string, job model.PDFJob) string {
	q := url.Values{}
	q.Set("jobid", job.JobID)
	q.Set("filename", job.FileName)
	return fmt.Sprintf("%s/apireport/%s/downloadpdf?%s", c.inner.baseURL, kind, q.Encode())
}

// Download retrieves the finished document.
func (c *ReportClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	if c.inner.token != nil {
		if tok := c.inner.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.inner.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
