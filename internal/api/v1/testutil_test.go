package v1_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gosuda/boardexport/internal/domain"
	"github.com/gosuda/boardexport/internal/export"
)

// ---------------------------------------------------------------------------
// Mock Exporter
// ---------------------------------------------------------------------------

type mockExporter struct {
	runFunc func(ctx context.Context, token string, req *domain.ExportRequest) (*export.Result, error)
	calls   int
}

func (m *mockExporter) Run(ctx context.Context, token string, req *domain.ExportRequest) (*export.Result, error) {
	m.calls++
	return m.runFunc(ctx, token, req)
}

// noUpstream panics if the handler reaches the exporter.
func noUpstream() *mockExporter {
	return &mockExporter{
		runFunc: func(_ context.Context, _ string, _ *domain.ExportRequest) (*export.Result, error) {
			panic("exporter must not be called")
		},
	}
}

// ---------------------------------------------------------------------------
// Mock Credentials
// ---------------------------------------------------------------------------

type mockCredentials struct {
	tokenFunc    func(req *domain.ExportRequest) (string, error)
	requireToken bool
	mode         string
}

func (m *mockCredentials) Token(req *domain.ExportRequest) (string, error) {
	return m.tokenFunc(req)
}

func (m *mockCredentials) RequiresRequestToken() bool { return m.requireToken }
func (m *mockCredentials) Mode() string               { return m.mode }

// requestCreds mirrors request mode: the body token is forwarded.
func requestCreds() *mockCredentials {
	return &mockCredentials{
		tokenFunc:    func(req *domain.ExportRequest) (string, error) { return req.Token, nil },
		requireToken: true,
		mode:         "request",
	}
}

// envCreds mirrors env mode with the given server secret.
func envCreds(secret string, err error) *mockCredentials {
	return &mockCredentials{
		tokenFunc:    func(_ *domain.ExportRequest) (string, error) { return secret, err },
		requireToken: false,
		mode:         "env",
	}
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func doRequest(h http.Handler, method, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/excel_export", r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"token": "tok-abc",
	"boardId": 1,
	"statusColumnId": "status",
	"allowedStatus": "New",
	"targetStatus": "Processed",
	"columnIds": [{"id": "email", "label": "Email"}]
}`
