package main

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	FilesLoaded   int64  `json:"files_loaded"`
	FilesSkipped  int64  `json:"files_skipped"`
	RowsMerged    int64  `json:"rows_merged"`
	LastLoadTime  string `json:"last_load_time"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth handles the /health endpoint
func (s *EventServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	lastLoad := s.loader.GetLastLoadTime()
	lastLoadStr := "never"
	if lastLoad > 0 {
		lastLoadStr = time.Unix(lastLoad, 0).Format(time.RFC3339)
	}

	response := HealthResponse{
		Status:        "healthy",
		FilesLoaded:   s.loader.GetFilesLoaded(),
		FilesSkipped:  s.loader.GetFilesSkipped(),
		RowsMerged:    s.loader.GetRowsMerged(),
		LastLoadTime:  lastLoadStr,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
