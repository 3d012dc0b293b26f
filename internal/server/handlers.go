package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/logging"
)

const maxRequestBytes = 1 << 20

type analyzeRequest struct {
	RepoURL      string `json:"repo_url"`
	MaxFiles     *int   `json:"max_files"`
	IncludeTests *bool  `json:"include_tests"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx, s.logger)

	var body analyzeRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			writeDetail(w, http.StatusBadRequest, "request body is required")
			return
		}
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	req := analysis.Request{
		RepoURL:  strings.TrimSpace(body.RepoURL),
		MaxFiles: s.defaultMaxFiles,
	}
	if body.MaxFiles != nil && *body.MaxFiles != 0 {
		req.MaxFiles = *body.MaxFiles
	}
	if body.IncludeTests != nil {
		req.IncludeTests = *body.IncludeTests
	}

	resp, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		if analysis.IsClientError(err) {
			logger.Warn("Rejected analysis request", "repo", req.RepoURL, "error", err)
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Analysis failed", "repo", req.RepoURL, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "operational",
		"version": s.version,
		"endpoints": map[string]string{
			"analyze": routeAnalyze,
			"status":  routeStatus,
			"layout":  routeLayoutWS,
			"viewer":  routeViewer,
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "CodeGraph API is running",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
