package web

import (
	"context"
	"net/http"
	"nfl-stats-lab/api/api"
	"nfl-stats-lab/archive"
	"sync"
)

// Refresher is the part of the feed the refresh webhook needs
type Refresher interface {
	Refresh(ctx context.Context) error
}

// History is the read side of the season archive; *archive.Archive in production
type History interface {
	MatchupHistory(ctx context.Context, teamID string) ([]archive.MatchupRecord, error)
	SOSHistory(ctx context.Context, teamID string) ([]float64, error)
}

var _ History = (*archive.Archive)(nil)

// Config holds the configuration for the web server
type Config struct {
	Addr      string
	API       *api.API
	Refresher Refresher
	// History backs /api/teams/{id}/history, which answers 503 without it
	History   History
	// MCP is mounted at /mcp when set
	MCP       http.Handler
	MCPAPIKey string
}

// Server is the HTTP server that serves the JSON views, the refresh webhook and the MCP endpoint
type Server struct {
	api       *api.API
	refresher Refresher
	history   History
	mcp       http.Handler
	mcpAPIKey string

	// tracks webhook refreshes still running
	inflight sync.WaitGroup
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
	Loaded bool   `json:"loaded"`
}

// historyResponse is a team's archived matchups and strength of schedule, newest first
type historyResponse struct {
	Team     string                  `json:"team"`
	Matchups []archive.MatchupRecord `json:"matchups"`
	SOS      []float64               `json:"sos"`
}
