/* handlers.go
 * Contains the HTTP handlers. Each handler reads the current snapshot through the API facade, so every response is
 * built from one consistent snapshot
 */

package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"nfl-stats-lab/api/api"
	"nfl-stats-lab/archive"
	"strings"
	"time"
)

const refreshTimeout = 30 * time.Second

// NewServer builds a Server from the given configuration
func NewServer(cfg Config) *Server {
	return &Server{
		api:       cfg.API,
		refresher: cfg.Refresher,
		history:   cfg.History,
		mcp:       cfg.MCP,
		mcpAPIKey: strings.TrimSpace(cfg.MCPAPIKey),
	}
}

// Handler returns the routed handler for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/matchups", s.MatchupsHandler)
	mux.HandleFunc("GET /api/teams", s.TeamsHandler)
	mux.HandleFunc("GET /api/teams/{id}", s.TeamHandler)
	mux.HandleFunc("GET /api/teams/{id}/history", s.TeamHistoryHandler)
	mux.HandleFunc("/webhooks/refresh", s.RefreshWebhookHandler)
	mux.HandleFunc("GET /healthz", s.HealthHandler)
	if s.mcp != nil {
		mux.Handle("/mcp", s.withAuth(s.mcp))
	}
	return mux
}

// MatchupsHandler returns this week's matchups
func (s *Server) MatchupsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.api.GetMatchupsView())
}

// TeamsHandler returns the league standings
func (s *Server) TeamsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.api.GetStandingsView())
}

// TeamHandler returns the detail view for one team. The id must be a team id, case does not matter
func (s *Server) TeamHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := s.api.GetTeamViewByID(id)
	if errors.Is(err, api.ErrTeamNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		log.Println("team view failed:", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// TeamHistoryHandler returns a team's archived matchups and strength of schedule
// Preconditions: Receives a request with a team id path value
// Postconditions: Writes the history newest week first, 404 for an unknown id, 503 when no archive is configured
func (s *Server) TeamHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "history is not configured"})
		return
	}
	team, err := s.api.GetTeamByID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	matchups, err := s.history.MatchupHistory(r.Context(), team.ID)
	if err != nil {
		log.Println("matchup history failed:", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	sos, err := s.history.SOSHistory(r.Context(), team.ID)
	if err != nil {
		log.Println("sos history failed:", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	res := historyResponse{Team: team.ID, Matchups: matchups, SOS: sos}
	if res.Matchups == nil {
		res.Matchups = []archive.MatchupRecord{}
	}
	if res.SOS == nil {
		res.SOS = []float64{}
	}
	writeJSON(w, http.StatusOK, res)
}

// RefreshWebhookHandler HTTP endpoint used by the ingestion pipeline to signal that new data has been written
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Kicks off a full feed refresh in the background and returns 202
func (s *Server) RefreshWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.refresher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "refresh is not configured"})
		return
	}

	log.Println("refresh webhook received")

	// the request context ends when we respond, so the refresh gets its own deadline
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), refreshTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.refresher.Refresh(ctx); err != nil {
			log.Println("webhook refresh failed:", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

// HealthHandler reports liveness and whether a snapshot has been loaded
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Loaded: s.api.Loaded()})
}

// withAuth requires the MCP API key as a bearer token or X-API-Key header. No key configured means no auth
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.mcpAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if key == "" {
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				key = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.mcpAPIKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to write response:", err)
	}
}
