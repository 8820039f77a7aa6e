package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	_ "github.com/JonMunkholm/leadsync/internal/core/formats"
	"github.com/JonMunkholm/leadsync/internal/history"
	"github.com/JonMunkholm/leadsync/internal/tracker"
)

const contactsCSV = "Company Name,Company Domain Name,First Name,Last Name,Prospect Job Title,Email\n" +
	"Acme,acme.io,Jane,Doe,CEO,jane@acme.io\n" +
	"Acme,acme.io,Jo,Lee,CTO,jo@acme.io\n" +
	"Globex,globex.com,Hank,Scorpio,Founder,hank@globex.com\n"

// memTracker is an in-memory tracker.
type memTracker struct {
	mu       sync.Mutex
	teams    []tracker.Team
	labels   []tracker.Label
	projects []tracker.Project
	issues   []tracker.IssueInput
	docs     int
	seq      int
}

func newMemTracker() *memTracker {
	return &memTracker{teams: []tracker.Team{{ID: "team-1", Name: "Sales"}}}
}

func (m *memTracker) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memTracker) Teams(context.Context) ([]tracker.Team, error) {
	return m.teams, nil
}

func (m *memTracker) FindLabel(_ context.Context, _, name string) (*tracker.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.labels {
		if l.Name == name {
			return &l, nil
		}
	}
	return nil, nil
}

func (m *memTracker) CreateLabel(_ context.Context, _, name string) (*tracker.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := tracker.Label{ID: m.nextID("label"), Name: name}
	m.labels = append(m.labels, l)
	return &l, nil
}

func (m *memTracker) FindProject(_ context.Context, _, name string) (*tracker.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memTracker) CreateProject(_ context.Context, in tracker.ProjectInput) (*tracker.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := tracker.Project{ID: m.nextID("project"), Name: in.Name}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *memTracker) CreateDocument(_ context.Context, in tracker.DocumentInput) (*tracker.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs++
	return &tracker.Document{ID: m.nextID("doc"), Title: in.Title}, nil
}

func (m *memTracker) FindIssue(_ context.Context, q tracker.IssueQuery) (*tracker.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, in := range m.issues {
		if in.Title == q.Title && in.ParentID == q.ParentID && in.ProjectID == q.ProjectID {
			return &tracker.Issue{ID: fmt.Sprintf("issue-%d", i), Title: in.Title}, nil
		}
	}
	return nil, nil
}

func (m *memTracker) CreateIssue(_ context.Context, in tracker.IssueInput) (*tracker.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = append(m.issues, in)
	return &tracker.Issue{ID: fmt.Sprintf("issue-%d", len(m.issues)-1), Title: in.Title}, nil
}

// memHistory records runs in memory.
type memHistory struct {
	mu        sync.Mutex
	runs      []history.Run
	recordErr error
}

func (h *memHistory) Record(_ context.Context, res *core.RunResult, fileName string, format core.Format) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recordErr != nil {
		return h.recordErr
	}
	h.runs = append([]history.Run{{
		ID:        res.RunID,
		FileName:  fileName,
		Format:    format,
		Mode:      res.Mode,
		DryRun:    res.DryRun,
		State:     res.State,
		Stats:     res.Stats,
		Errors:    res.Errors,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
	}}, h.runs...)
	return nil
}

func (h *memHistory) Recent(_ context.Context, limit int) ([]history.Run, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.runs) {
		limit = len(h.runs)
	}
	return h.runs[:limit], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Tracker: config.TrackerConfig{Endpoint: tracker.DefaultEndpoint, Timeout: time.Second},
		Sync: config.SyncConfig{
			Hierarchy:         "projects",
			LabelName:         core.DefaultLabelName,
			DescriptionLimit:  core.DescriptionLimit,
			MaxConcurrentRuns: 2,
			MaxWaitTime:       time.Second,
			RunTimeout:        time.Minute,
		},
		Input:   config.InputConfig{MaxFileSize: 1 << 20, PreviewRows: 5},
		Server:  config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

type harness struct {
	server   *Server
	tracker  *memTracker
	history  *memHistory
	keys     []string
	registry *prometheus.Registry
}

func newHarness(t *testing.T, cfg *config.Config, withHistory bool) *harness {
	t.Helper()
	h := &harness{tracker: newMemTracker(), registry: prometheus.NewRegistry()}
	deps := Deps{
		Trackers: func(apiKey string) core.Tracker {
			h.keys = append(h.keys, apiKey)
			return h.tracker
		},
		RunMetrics: core.NewRunMetrics(h.registry),
		Gatherer:   h.registry,
	}
	if withHistory {
		h.history = &memHistory{}
		deps.History = h.history
	}
	h.server = NewServer(cfg, deps)
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.server.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t, testConfig(), true)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Runs.MaxConcurrent)
	assert.Equal(t, 2, resp.Runs.Available)
	assert.True(t, resp.History)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestDetect(t *testing.T) {
	h := newHarness(t, testConfig(), false)

	rec := h.do(uploadRequest(t, "/api/detect?rows=2", "leads.csv", contactsCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := decode[core.DatasetPreview](t, rec)
	assert.Equal(t, "leads.csv", p.FileName)
	assert.Equal(t, core.FormatOriginal, p.Format)
	assert.Equal(t, 3, p.RowCount)
	assert.Equal(t, 2, p.CompanyCount)
	assert.Len(t, p.Rows, 2)
	assert.Empty(t, h.keys, "detect never builds a tracker client")
}

func TestDetect_UnknownLayout(t *testing.T) {
	h := newHarness(t, testConfig(), false)

	rec := h.do(uploadRequest(t, "/api/detect", "other.csv", "Name,Phone\nAnn,555\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[core.DatasetPreview](t, rec)
	assert.Equal(t, core.FormatUnknown, p.Format)
	assert.NotEmpty(t, p.Detection.Candidates)
}

func TestDetect_BadRequests(t *testing.T) {
	cfg := testConfig()
	cfg.Input.MaxFileSize = 64
	h := newHarness(t, cfg, false)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantErr  string
	}{
		{"no file", uploadRequest(t, "/api/detect", "", "", map[string]string{"mode": "projects"}), http.StatusBadRequest, "FILE003"},
		{"empty file", uploadRequest(t, "/api/detect", "empty.csv", "", nil), http.StatusBadRequest, "FILE002"},
		{"too large", uploadRequest(t, "/api/detect", "big.csv", contactsCSV, nil), http.StatusRequestEntityTooLarge, "FILE001"},
		{"bad rows", uploadRequest(t, "/api/detect?rows=x", "a.csv", "A\n1\n", nil), http.StatusBadRequest, "ERR000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestSync(t *testing.T) {
	h := newHarness(t, testConfig(), true)

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil)
	req.Header.Set(TrackerKeyHeader, "lin_api_caller")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[SyncResponse](t, rec)
	assert.Equal(t, core.FormatOriginal, resp.Format)
	require.NotNil(t, resp.Result)
	assert.Equal(t, core.StateDone, resp.Result.State)
	assert.Equal(t, core.ModeProjects, resp.Result.Mode)
	assert.Equal(t, core.LevelStats{Processed: 2, Created: 2}, resp.Result.Stats.Companies)
	assert.Equal(t, core.LevelStats{Processed: 3, Created: 3}, resp.Result.Stats.Individuals)
	assert.Len(t, resp.Stats, 6)
	assert.Nil(t, resp.Error)

	assert.Equal(t, []string{"lin_api_caller"}, h.keys)
	assert.Len(t, h.tracker.projects, 2)
	assert.Equal(t, 2, h.tracker.docs)

	require.Len(t, h.history.runs, 1)
	assert.Equal(t, resp.Result.RunID, h.history.runs[0].ID)
	assert.Equal(t, "leads.csv", h.history.runs[0].FileName)
	assert.Equal(t, core.FormatOriginal, h.history.runs[0].Format)
	assert.NotContains(t, rec.Body.String(), "lin_api_caller")
}

func TestSync_IssuesModeDryRun(t *testing.T) {
	h := newHarness(t, testConfig(), false)

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, map[string]string{"mode": "issues", "dry_run": "true"})
	req.Header.Set(TrackerKeyHeader, "key")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[SyncResponse](t, rec)
	assert.Equal(t, core.ModeIssues, resp.Result.Mode)
	assert.True(t, resp.Result.DryRun)
	assert.Equal(t, 2, resp.Result.Stats.Companies.Created)
	assert.Equal(t, 3, resp.Result.Stats.Individuals.Created)
	assert.Empty(t, h.tracker.issues, "dry run creates nothing")
	assert.Empty(t, h.tracker.labels)
	assert.Equal(t, "Companies", resp.Stats[0].Level)
}

func TestSync_ConfiguredKey(t *testing.T) {
	cfg := testConfig()
	cfg.Tracker.APIKey = "lin_api_config"
	h := newHarness(t, cfg, false)

	rec := h.do(uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"lin_api_config"}, h.keys)
}

func TestSync_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		fileName string
		content  string
		fields   map[string]string
		wantCode int
		wantErr  string
	}{
		{"missing api key", "", "leads.csv", contactsCSV, nil, http.StatusBadRequest, "API002"},
		{"invalid mode", "key", "leads.csv", contactsCSV, map[string]string{"mode": "teams"}, http.StatusBadRequest, "RUN004"},
		{"invalid dry run", "key", "leads.csv", contactsCSV, map[string]string{"dry_run": "maybe"}, http.StatusBadRequest, "ERR000"},
		{"unsupported format", "key", "leads.csv", "Company Name,First Name,Last Name,Email\nAcme,A,B,c@d\n", nil, http.StatusUnprocessableEntity, "FMT001"},
		{"empty company", "key", "leads.csv", "Company Name,First Name,Last Name,Prospect Job Title\n,A,B,C\n", nil, http.StatusUnprocessableEntity, "FMT003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig(), true)
			req := uploadRequest(t, "/api/sync", tt.fileName, tt.content, tt.fields)
			if tt.key != "" {
				req.Header.Set(TrackerKeyHeader, tt.key)
			}

			rec := h.do(req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, rec).Code)
			assert.Empty(t, h.history.runs)
		})
	}
}

func TestSync_FatalRunIsRecorded(t *testing.T) {
	h := newHarness(t, testConfig(), true)
	h.tracker.teams = nil

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil)
	req.Header.Set(TrackerKeyHeader, "key")
	rec := h.do(req)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	resp := decode[SyncResponse](t, rec)
	require.NotNil(t, resp.Result)
	assert.Equal(t, core.StateFailed, resp.Result.State)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TRK001", resp.Error.Code)

	require.Len(t, h.history.runs, 1)
	assert.Equal(t, core.StateFailed, h.history.runs[0].State)
}

func TestSync_HistoryFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, testConfig(), true)
	h.history.recordErr = errors.New("history store: connection refused")

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil)
	req.Header.Set(TrackerKeyHeader, "key")
	rec := h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSync_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.Sync.MaxConcurrentRuns = 1
	cfg.Sync.MaxWaitTime = 10 * time.Millisecond
	h := newHarness(t, cfg, false)

	require.NoError(t, h.server.limiter.Acquire(context.Background()))
	defer h.server.limiter.Release()

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil)
	req.Header.Set(TrackerKeyHeader, "key")
	rec := h.do(req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "RUN001", decode[ErrorResponse](t, rec).Code)
}

func TestRuns(t *testing.T) {
	h := newHarness(t, testConfig(), true)
	for i := 0; i < 3; i++ {
		req := uploadRequest(t, "/api/sync", fmt.Sprintf("leads-%d.csv", i), contactsCSV, nil)
		req.Header.Set(TrackerKeyHeader, "key")
		require.Equal(t, http.StatusOK, h.do(req).Code)
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[RunsResponse](t, rec)
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "leads-2.csv", resp.Runs[0].FileName)
	assert.Equal(t, 0, resp.Runs[0].Stats.Companies.Created, "second and later runs find existing projects")
	assert.Equal(t, 2, resp.Runs[0].Stats.Companies.Existing)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_HistoryDisabled(t *testing.T) {
	h := newHarness(t, testConfig(), false)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DB002", decode[ErrorResponse](t, rec).Code)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret-1", "secret-2"}}
	h := newHarness(t, cfg, true)

	tests := []struct {
		name     string
		key      string
		wantCode int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", "secret-2", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			assert.Equal(t, tt.wantCode, h.do(req).Code)
		})
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays open")
}

func TestMetrics(t *testing.T) {
	h := newHarness(t, testConfig(), false)

	req := uploadRequest(t, "/api/sync", "leads.csv", contactsCSV, nil)
	req.Header.Set(TrackerKeyHeader, "key")
	require.Equal(t, http.StatusOK, h.do(req).Code)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `leadsync_sync_runs_total{dry_run="false",mode="projects",state="done"} 1`)
}

func TestShutdown_WithoutStart(t *testing.T) {
	h := newHarness(t, testConfig(), false)
	assert.NoError(t, h.server.Shutdown(context.Background()))
}
