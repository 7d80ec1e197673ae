package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// dispatcher.go - storage event classification and HTTP event endpoint
//
// An "object created" notification names a bucket and an object path. The
// dispatcher strips the configured root prefix, classifies the remainder
// against the family path prefixes in fixed order (archive before
// most_popular), extracts any path-encoded snapshot date, and hands the
// object to the per-file load unit.

// ErrMalformedPath marks a path that matched a family prefix but is missing
// required path-encoded metadata. The file cannot be loaded without it.
var ErrMalformedPath = errors.New("malformed object path")

// StorageEvent is the notification payload: GCS/Eventarc-style object
// metadata. Extra fields are ignored.
type StorageEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// Classification names the family an object path belongs to, plus any
// metadata extracted from the path (snapshot date for most_popular).
type Classification struct {
	Family   *Family
	PathDate string
}

// classify matches an object path against the known families. The root
// prefix is stripped before matching. Returns (nil, nil) when the path
// belongs to no family: not an error, the loader only cares about the two
// known output prefixes.
func classify(objectPath, rootPrefix string) (*Classification, error) {
	rel := objectPath
	if rootPrefix != "" {
		if strings.HasPrefix(rel, rootPrefix+"/") {
			rel = rel[len(rootPrefix)+1:]
		} else {
			rel = strings.TrimPrefix(rel, rootPrefix)
		}
	}

	for _, f := range allFamilies() {
		if !strings.HasPrefix(rel, f.PathPrefix) {
			continue
		}
		c := &Classification{Family: f}
		if f.DatePattern != nil {
			m := f.DatePattern.FindStringSubmatch(objectPath)
			if m == nil {
				return nil, fmt.Errorf("%w: no snapshot date in %s", ErrMalformedPath, objectPath)
			}
			c.PathDate = m[1]
		}
		return c, nil
	}
	return nil, nil
}

// EventServer serves the storage notification endpoint plus health and
// metrics.
type EventServer struct {
	units      unitRunner
	loader     *Loader
	rootPrefix string
	port       int
	startTime  time.Time
}

// NewEventServer creates a new event server
func NewEventServer(units unitRunner, loader *Loader, cfg *Config) *EventServer {
	return &EventServer{
		units:      units,
		loader:     loader,
		rootPrefix: cfg.Storage.Prefix,
		port:       cfg.Service.Port,
		startTime:  time.Now(),
	}
}

// Start starts the HTTP server. Blocks.
func (s *EventServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvent)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metricsHandler())

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Event server listening on %s", addr)

	return http.ListenAndServe(addr, mux)
}

// handleEvent handles one storage notification. The response mirrors the
// classification outcome: 200 for handled-or-ignored, 400 for a malformed
// family path, 500 for a load failure.
func (s *EventServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. POST storage events.", http.StatusMethodNotAllowed)
		return
	}

	var event StorageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respond(w, "Invalid event payload", http.StatusBadRequest)
		return
	}
	if event.Bucket == "" || event.Name == "" {
		log.Printf("Missing bucket or name in event data")
		respond(w, "Missing bucket or name", http.StatusBadRequest)
		return
	}

	log.Printf("Received event for s3://%s/%s", event.Bucket, event.Name)
	outcome := s.dispatch(r, &event, w)
	eventsTotal.WithLabelValues(outcome).Inc()
}

// dispatch classifies and runs the load unit, writes the HTTP outcome, and
// returns the outcome label for metrics.
func (s *EventServer) dispatch(r *http.Request, event *StorageEvent, w http.ResponseWriter) string {
	c, err := classify(event.Name, s.rootPrefix)
	if err != nil {
		log.Printf("Could not extract snapshot date from path: %s", event.Name)
		respond(w, "Invalid most_popular path format", http.StatusBadRequest)
		return "malformed"
	}
	if c == nil {
		log.Printf("Ignoring non-slim file: %s", event.Name)
		respond(w, "File ignored (not a slim file)", http.StatusOK)
		return "ignored"
	}

	log.Printf("Processing %s file: %s", c.Family.Name, event.Name)
	result, err := s.units.Run(r.Context(), c.Family, event.Name, c.PathDate)
	if err != nil {
		log.Printf("Error processing event: %v", err)
		respond(w, fmt.Sprintf("Error: %v", err), http.StatusInternalServerError)
		return "error"
	}

	if result.Skipped {
		respond(w, fmt.Sprintf("%s already loaded", c.Family.Name), http.StatusOK)
		return "skipped"
	}
	respond(w, fmt.Sprintf("%s loaded successfully", c.Family.Name), http.StatusOK)
	return "loaded"
}

func respond(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"message": message,
		"status":  status,
	})
}
