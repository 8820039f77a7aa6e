package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/history"
	"github.com/JonMunkholm/leadsync/internal/logging"
)

// TrackerKeyHeader carries the caller's tracker API key. It is used for the
// request only and never stored.
const TrackerKeyHeader = "X-Tracker-Key"

// multipartOverhead is allowed on top of the file size limit for form fields
// and part headers.
const multipartOverhead = 1 << 20

// historyWriteTimeout bounds recording a finished run.
const historyWriteTimeout = 5 * time.Second

// SyncResponse is returned by POST /api/sync.
type SyncResponse struct {
	Format core.Format     `json:"format"`
	Result *core.RunResult `json:"result"`
	Stats  []core.StatsRow `json:"stats"`
	Error  *ErrorResponse  `json:"error,omitempty"`
}

// RunsResponse is returned by GET /api/runs.
type RunsResponse struct {
	Runs []history.Run `json:"runs"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string                `json:"status"`
	Runs    core.RunLimiterStatus `json:"runs"`
	History bool                  `json:"history"`
}

// handleHealth reports liveness and run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Runs:    s.limiter.Status(),
		History: s.deps.History != nil,
	})
}

// handleDetect loads the uploaded file and returns its preview without
// contacting the tracker.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	ds, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	rows := s.cfg.Input.PreviewRows
	if v := r.URL.Query().Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: rows=%q", errInvalidForm, v), http.StatusBadRequest)
			return
		}
		rows = n
	}

	writeJSON(w, r, http.StatusOK, core.Preview(ds, rows))
}

// handleSync runs a sync for the uploaded file and waits for the result.
// Form fields: file (required), mode (projects|issues), dry_run (bool).
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	apiKey := strings.TrimSpace(r.Header.Get(TrackerKeyHeader))
	if apiKey == "" {
		apiKey = s.cfg.Tracker.APIKey
	}
	if apiKey == "" {
		respondError(w, r, errAPIKeyRequired, http.StatusBadRequest)
		return
	}

	ds, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	opts, err := s.syncOptions(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	syncer := core.NewSyncer(s.deps.Trackers(apiKey), opts)

	var (
		format core.Format
		result *core.RunResult
	)
	runErr := s.limiter.Do(r.Context(), func(ctx context.Context) error {
		ctx, cancel := s.runContext(ctx)
		defer cancel()

		var err error
		format, result, err = syncer.RunDataset(ctx, ds)
		return err
	})

	if result == nil {
		respondError(w, r, runErr, statusFor(runErr))
		return
	}

	s.recordRun(r.Context(), result, ds.FileName, format)

	resp := SyncResponse{
		Format: format,
		Result: result,
		Stats:  core.StatsRows(result.Stats, result.Mode),
	}
	status := http.StatusOK
	if runErr != nil {
		logging.FromContext(r.Context()).Error("sync failed", "run_id", result.RunID, "error", runErr)
		errResp := newErrorResponse(runErr)
		resp.Error = &errResp
		status = statusFor(runErr)
	}
	writeJSON(w, r, status, resp)
}

// handleRuns lists recent runs from the history store.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		respondError(w, r, errHistoryDisabled, http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: limit=%q", errInvalidForm, v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, RunsResponse{Runs: runs})
}

// readUpload parses the multipart form and loads its "file" part.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*core.Dataset, error) {
	maxSize := s.cfg.Input.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	ds, err := core.Load(file, header.Filename, core.LoadOptions{MaxSize: maxSize})
	if err != nil {
		if errors.Is(err, core.ErrFileTooLarge) || errors.Is(err, core.ErrEmptyFile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	return ds, nil
}

// syncOptions builds run options from the form, falling back to config.
func (s *Server) syncOptions(r *http.Request) (core.SyncOptions, error) {
	opts := core.SyncOptions{
		LabelName:        s.cfg.Sync.LabelName,
		DescriptionLimit: s.cfg.Sync.DescriptionLimit,
		Metrics:          s.deps.RunMetrics,
	}

	modeValue := r.FormValue("mode")
	if modeValue == "" {
		modeValue = s.cfg.Sync.Hierarchy
	}
	mode, ok := core.ParseMode(modeValue)
	if !ok {
		return opts, fmt.Errorf("%w %q", errInvalidMode, modeValue)
	}
	opts.Mode = mode

	if v := r.FormValue("dry_run"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: dry_run=%q", errInvalidForm, v)
		}
		opts.DryRun = dryRun
	}

	return opts, nil
}

// recordRun stores the run summary. Failures are only logged.
func (s *Server) recordRun(ctx context.Context, res *core.RunResult, fileName string, format core.Format) {
	if s.deps.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.deps.History.Record(ctx, res, fileName, format); err != nil {
		logging.FromContext(ctx).Warn("failed to record run", "run_id", res.RunID, "error", err)
	}
}
