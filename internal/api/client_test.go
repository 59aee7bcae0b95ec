package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanakrit/ledgerctl/internal/common"
)

func TestDoSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithToken(func() string { return "tok-1" }))
	_, err := client.do(context.Background(), http.MethodGet, "/shop/x", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestDoUnauthorizedFiresHookAndClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookFired := false
	client := NewClient(srv.URL, WithUnauthorizedHook(func() { hookFired = true }))

	_, err := client.do(context.Background(), http.MethodGet, "/shop/x", nil, nil)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.True(t, hookFired)
}

func TestDoServerErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "overloaded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.do(context.Background(), http.MethodGet, "/apireport/journalvat", nil, nil)
	require.Error(t, err)
	assert.True(t, IsServerError(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "overloaded", apiErr.Message)
}

func TestJournalVatParsesRowsAndTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apireport/journalvat", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, "1", r.URL.Query().Get("mode"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"docno": "INV-001", "vatbase": 100.0, "vatamount": 7.0, "total": 107.0},
				{"docno": "INV-002", "vatbase": 200.0, "vatamount": 14.0, "total": 214.0},
			},
			"total": 42,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	rows, total, err := client.JournalVat(context.Background(), VatReportParams{
		Limit: 10, Offset: 20, Mode: 1, Year: 2567, Period: 3,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 42, total)
	assert.Equal(t, "INV-001", rows[0].DocNo)
	assert.InDelta(t, 7.0, rows[0].VatAmount, 1e-9)
}

func TestReportTotalFallsBackToRowCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []map[string]any{{"docno": "A"}, {"docno": "B"}, {"docno": "C"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	rows, total, err := client.JournalVat(context.Background(), VatReportParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 3, total)
}

func TestAccountsPayableUsesPaginationTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apireport/accountspayable", r.URL.Path)
		assert.Equal(t, "ACC-2101", r.URL.Query().Get("accountcode"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"data":       []map[string]any{{"custcode": "C01", "ending_balance": 500.0}},
			"pagination": map[string]any{"total": 17, "page": 1},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	rows, total, err := client.AccountsPayable(context.Background(), StatusReportParams{
		Limit: 20, AccountCode: "ACC-2101",
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 17, total)
	assert.InDelta(t, 500.0, rows[0].EndingBalance, 1e-9)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["username"] == "somchai" && body["password"] == "secret" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true, "token": "tok", "refresh": "ref",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad credentials"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	creds, err := client.Login(context.Background(), "somchai", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.Token)
	assert.Equal(t, "ref", creds.Refresh)

	_, err = client.Login(context.Background(), "somchai", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad credentials", apiErr.Message)
}

func TestListCounterparties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/debtaccount/debtor", r.URL.Path)
		assert.Equal(t, "code:1", r.URL.Query().Get("sort"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"guidfixed": "g1", "code": "D0001", "names": []map[string]string{{"code": "th", "name": "ลูกหนี้หนึ่ง"}}},
			},
			"pagination": map[string]any{"total": 1, "page": 1},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	items, page, err := client.ListCounterparties(context.Background(), KindDebtor, ListParams{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "D0001 ~ ลูกหนี้หนึ่ง", items[0].DisplayLabel())
	assert.Equal(t, 1, page.Total)
}

func TestPDFGenerateAndCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/apireport/journalvat/genpdf":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]string{"jobId": "job-9", "fileName": "vat-2567-03.pdf"},
			})
		case "/apireport/journalvat/checkpdf":
			assert.Equal(t, "job-9", r.URL.Query().Get("jobid"))
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewReportClient(srv.URL)

	job, err := client.Generate(context.Background(), PDFJournalVat, nil)
	require.NoError(t, err)
	assert.Equal(t, "job-9", job.JobID)
	assert.Equal(t, "vat-2567-03.pdf", job.FileName)

	done, err := client.Check(context.Background(), PDFJournalVat, job)
	require.NoError(t, err)
	assert.True(t, done)

	u := client.DownloadURL(PDFJournalVat, job)
	assert.Contains(t, u, "/apireport/journalvat/downloadpdf?")
	assert.Contains(t, u, "jobid=job-9")
}

func TestPDFGenerateSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "no data in period"})
	}))
	defer srv.Close()

	client := NewReportClient(srv.URL)
	_, err := client.Generate(context.Background(), PDFJournalVat, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no data in period", apiErr.Message)
}
