package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/boardexport/internal/config"
	"github.com/gosuda/boardexport/internal/credential"
	"github.com/gosuda/boardexport/internal/domain"
	"github.com/gosuda/boardexport/internal/export"
	"github.com/gosuda/boardexport/internal/server"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fakeExporter struct {
	calls int
}

func (f *fakeExporter) Run(_ context.Context, _ string, _ *domain.ExportRequest) (*export.Result, error) {
	f.calls++
	return &export.Result{
		ID:       uuid.New(),
		Workbook: []byte("PK-workbook"),
		Filename: "new_entrants_2026-01-02_03-04-05.xlsx",
		Matched:  1,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:           ":0",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   0,
			RateLimitBurst: 0,
		},
		Monday: config.MondayConfig{
			APIURL:     "https://api.monday.com/v2",
			APIVersion: "2024-10",
			Timeout:    5 * time.Second,
			PageSize:   500,
		},
		Credential: config.CredentialConfig{Mode: config.CredentialModeRequest},
		Export: config.ExportConfig{
			FilenamePrefix: "new_entrants",
			SheetName:      "New Entrants",
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *fakeExporter) {
	t.Helper()

	exp := &fakeExporter{}
	srv := server.New(t.Context(), cfg, exp, credential.RequestToken{}, "test")
	return srv.Handler(), exp
}

const exportBody = `{"token":"t","boardId":1,"statusColumnId":"status","allowedStatus":"New","targetStatus":"Done","columnIds":[]}`

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, testConfig())

	rec := do(h, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExportRoute_Success(t *testing.T) {
	t.Parallel()

	h, exp := newTestServer(t, testConfig())

	rec := do(h, http.MethodPost, server.ExportPath, exportBody, map[string]string{
		"Content-Type": "application/json",
		"Origin":       "https://app.example.test",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, "PK-workbook", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.NotEmpty(t, rec.Header().Get("X-Export-ID"))
}

func TestExportRoute_Preflight(t *testing.T) {
	t.Parallel()

	h, exp := newTestServer(t, testConfig())

	rec := do(h, http.MethodOptions, server.ExportPath, "", map[string]string{
		"Origin":                         "https://app.example.test",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "content-type,authorization",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Zero(t, exp.calls)
}

func TestExportRoute_PreflightRejectsOtherMethods(t *testing.T) {
	t.Parallel()

	h, exp := newTestServer(t, testConfig())

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		rec := do(h, http.MethodOptions, server.ExportPath, "", map[string]string{
			"Origin":                        "https://app.example.test",
			"Access-Control-Request-Method": method,
		})

		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), method)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"), method)
	}

	// A cross-origin GET gets the 405 without CORS headers.
	rec := do(h, http.MethodGet, server.ExportPath, "", map[string]string{"Origin": "https://app.example.test"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, exp.calls)
}

func TestInfoRoute_CORS(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, testConfig())

	rec := do(h, http.MethodOptions, "/api/v1/info", "", map[string]string{
		"Origin":                        "https://app.example.test",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodGet, rec.Header().Get("Access-Control-Allow-Methods"))

	rec = do(h, http.MethodOptions, "/api/v1/info", "", map[string]string{
		"Origin":                        "https://app.example.test",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExportRoute_BareOptions(t *testing.T) {
	t.Parallel()

	h, exp := newTestServer(t, testConfig())

	rec := do(h, http.MethodOptions, server.ExportPath, "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, exp.calls)
}

func TestExportRoute_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h, exp := newTestServer(t, testConfig())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(h, method, server.ExportPath, exportBody, nil)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String(), method)
	}
	assert.Zero(t, exp.calls)
}

func TestRouter_JSONFallbacks(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, testConfig())

	rec := do(h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/healthz", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
}

func TestInfoRoute(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Credential.SigningSecret = "s3cret"
	h, _ := newTestServer(t, cfg)

	rec := do(h, http.MethodGet, "/api/v1/info", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, server.ServiceName, info["service"])
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "request", info["credentialMode"])
	assert.Equal(t, "2024-10", info["apiVersion"])
	assert.Equal(t, true, info["sessionVerification"])
	assert.NotContains(t, rec.Body.String(), "s3cret")
}

// ---------------------------------------------------------------------------
// Middleware wiring
// ---------------------------------------------------------------------------

func TestExportRoute_RateLimited(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RateLimitRPS = 0.001
	cfg.Server.RateLimitBurst = 1
	h, exp := newTestServer(t, cfg)

	rec := do(h, http.MethodPost, server.ExportPath, exportBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, server.ExportPath, exportBody, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
	assert.Equal(t, 1, exp.calls)

	// Health checks are not rate limited.
	rec = do(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportRoute_SessionVerification(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Credential.SigningSecret = "app-signing-secret"
	h, exp := newTestServer(t, cfg)

	rec := do(h, http.MethodPost, server.ExportPath, exportBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	assert.Zero(t, exp.calls)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"dat": map[string]any{"account_id": 1, "user_id": 2},
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("app-signing-secret"))
	require.NoError(t, err)

	rec = do(h, http.MethodPost, server.ExportPath, exportBody, map[string]string{"Authorization": tok})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, exp.calls)

	// Preflight never needs a session token.
	rec = do(h, http.MethodOptions, server.ExportPath, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
