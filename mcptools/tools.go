/* tools.go
 * Contains the Model Context Protocol tools. They expose the same views as the HTTP api so an assistant can read
 * matchups, standings and team detail from the live snapshot
 */

package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"nfl-stats-lab/api/api"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "nfl-stats-lab"
	serverVersion = "1.0.0"
)

type NoArgs struct{}

type TeamArgs struct {
	Team string `json:"team" jsonschema:"Team code, full name or part of the name (required)"`
}

// Tools holds the API the tool handlers read from
type Tools struct {
	api *api.API
}

// NewServer creates an MCP server with every tool registered
func NewServer(a *api.API) (*mcp.Server, error) {
	if a == nil {
		return nil, fmt.Errorf("api is required")
	}
	t := &Tools{api: a}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weekly_matchups",
		Description: "This week's matchups. Each pairing appears once, with both teams' records",
	}, t.WeeklyMatchups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "standings",
		Description: "League standings ordered by wins",
	}, t.Standings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "team_detail",
		Description: "A team's strength of schedule, analytics grades and upcoming games with a heuristic win probability",
	}, t.TeamDetail)

	return server, nil
}

// NewHandler serves the MCP server over streamable HTTP
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (t *Tools) WeeklyMatchups(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(json.MarshalIndent(t.api.GetMatchupsView(), "", "  "))
}

func (t *Tools) Standings(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(json.MarshalIndent(t.api.GetStandingsView(), "", "  "))
}

func (t *Tools) TeamDetail(ctx context.Context, req *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
	query := strings.TrimSpace(args.Team)
	if query == "" {
		return toolError(fmt.Errorf("team is required")), nil, nil
	}
	view, err := t.api.GetTeamView(query)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(json.MarshalIndent(view, "", "  "))
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
