package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/system"
)

// Server exposes a system's shape state over HTTP
type Server struct {
	port    int
	sys     *system.System
	console *Console
}

// NewServer creates a web server over sys. Messages logged to console are
// served from /api/console and /api/stream; console may be nil.
func NewServer(port int, sys *system.System, console *Console) *Server {
	return &Server{port: port, sys: sys, console: console}
}

// ConsoleResponse is the console output buffered since the last drain
type ConsoleResponse struct {
	Dropped  int              `json:"dropped"`
	Messages []ConsoleMessage `json:"messages"`
}

// ListenerRequest moves the listener. A null position removes it.
type ListenerRequest struct {
	Position *[3]float64 `json:"position"`
}

// Handler returns the API routes wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/shapes", s.handleShapes).Methods("GET")
	api.HandleFunc("/shapes/{name}", s.handleShape).Methods("GET")
	api.HandleFunc("/listener", s.handleListener).Methods("POST")
	api.HandleFunc("/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/resync", s.handleResync).Methods("POST")
	api.HandleFunc("/stream", s.handleStream).Methods("GET")
	api.HandleFunc("/console", s.handleConsole).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"shapes": s.sys.Len(),
	})
}

// handleShapes returns every shape's state in registration order
func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotResponse(s.sys.Snapshot()))
}

// handleShape returns a single shape's state
func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	state, ok := s.sys.State(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown shape: "+name)
		return
	}
	writeJSON(w, http.StatusOK, shapeResponse(state))
}

// handleListener moves or removes the listener. The next tick picks it up;
// call /api/resync after a jump to re-evaluate culling at once.
func (s *Server) handleListener(w http.ResponseWriter, r *http.Request) {
	var req ListenerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Position == nil {
		s.sys.SetListener(system.NoListener{})
		writeJSON(w, http.StatusOK, map[string]interface{}{"listener": nil})
		return
	}
	p := *req.Position
	s.sys.SetListener(system.NewStaticListener(core.NewVec3(p[0], p[1], p[2])))
	writeJSON(w, http.StatusOK, map[string]interface{}{"listener": p})
}

// handleTick advances the system count ticks and returns the resulting state
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	count, err := parseIntParam(r.URL.Query(), "count", 1, 1, 10000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := 0; i < count; i++ {
		s.sys.Tick()
	}
	writeJSON(w, http.StatusOK, snapshotResponse(s.sys.Snapshot()))
}

// handleResync recomputes every culling rectangle against the current listener
func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	s.sys.Resync()
	writeJSON(w, http.StatusOK, snapshotResponse(s.sys.Snapshot()))
}

// handleConsole returns the log messages buffered since the last call
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.drainConsole())
}

func (s *Server) drainConsole() ConsoleResponse {
	if s.console == nil {
		return ConsoleResponse{Messages: []ConsoleMessage{}}
	}
	messages, dropped := s.console.Drain()
	return ConsoleResponse{Dropped: dropped, Messages: messages}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
