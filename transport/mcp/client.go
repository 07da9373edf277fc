package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Drone Safari",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Drone Safari - MCP Interface

Every tool proxies to the Drone Safari REST API.

OBJECTIVE:
Fly the drone around the grid and photograph the zebra, the elephant and the oryx
before the pictures run out.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_status: grid, position, heading and pictures left
- move: fly one cell forward, backward, left or right (heading unchanged)
- turn: rotate a quarter turn left or right in place
- take_picture: photograph whatever is two cells ahead
- run_commands: several commands in one call; stops at the first rejection or game end
- reset_game: restart the session's layout
- command_history: past commands
- scan: sensor sweep of the cells within two steps
- describe_cell: what a single cell holds
- solve: shortest winning plan from the current state
- list_configs: available layouts
- game_instructions: the full rules`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sensorsProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Append a sensor sweep to the result",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally on a named layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Layout ID from list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_status",
		Description: "Get the current game status with the rendered grid",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Fly one cell relative to the current heading. The heading does not change.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"forward", "backward", "left", "right"},
					"description": "Direction relative to the heading",
				},
				"sensors": sensorsProp(),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn",
		Description: "Rotate a quarter turn in place",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"direction": map[string]interface{}{
					"type": "string",
					"enum": []string{"left", "right"},
				},
				"sensors": sensorsProp(),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "take_picture",
		Description: "Spend one picture on the cell two steps ahead",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"sensors":    sensorsProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleTakePicture)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_commands",
		Description: fmt.Sprintf("Execute up to %d commands in order, e.g. \"turn left\", \"move forward\", \"picture\". Stops at the first rejected command or when the game ends.", engine.MaxBulkCommands),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"commands": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Commands to execute",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before running",
				},
			},
			Required: []string{"session_id", "commands"},
		},
	}, c.handleRunCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get command history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type": "string",
					"enum": []string{"asc", "desc"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommandHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "scan",
		Description: "Sensor sweep: trees, animals, scared-animal cells and grid edges within two cells",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleScan)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one grid cell. Row 0 is the southern edge, column 0 the western edge.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based, grows northward)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based, grows eastward)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Compute the shortest winning command sequence from the current state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available layouts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments returns the call's argument object, or an empty one.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatStatus(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		outcome := "in progress"
		if s.GameState != nil {
			outcome = s.GameState.Outcome.String()
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), outcome)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatStatus(session.GameState))), nil
}

func (c *Client) handleGameStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var status engine.Status
	if err := c.apiCall(ctx, "GET", path, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStatus(&status)), nil
}

func (c *Client) command(ctx context.Context, request mcp.CallToolRequest, suffix string, body map[string]interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	direction, _ := args["direction"].(string)
	sensors, _ := args["sensors"].(bool)
	return c.command(ctx, request, "/move", map[string]interface{}{"direction": direction, "sensors": sensors})
}

func (c *Client) handleTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	direction, _ := args["direction"].(string)
	sensors, _ := args["sensors"].(bool)
	return c.command(ctx, request, "/turn", map[string]interface{}{"direction": direction, "sensors": sensors})
}

func (c *Client) handleTakePicture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sensors, _ := arguments(request)["sensors"].(bool)
	return c.command(ctx, request, "/picture", map[string]interface{}{"sensors": sensors})
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/reset", nil)
}

func (c *Client) handleRunCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/commands")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reset, _ := args["reset"].(bool)

	var commands []string
	switch raw := args["commands"].(type) {
	case []interface{}:
		for _, v := range raw {
			if s, ok := v.(string); ok {
				commands = append(commands, s)
			}
		}
	case []string:
		commands = raw
	case string:
		// Tolerate a single comma-separated string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				commands = append(commands, s)
			}
		}
	}
	if len(commands) == 0 && !reset {
		return mcp.NewToolResultError("commands must contain at least one command"), nil
	}

	var result service.BulkResult
	body := map[string]interface{}{"commands": commands, "reset": reset}
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(&result)), nil
}

func (c *Client) handleCommandHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/scan")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var scan service.ScanResult
	if err := c.apiCall(ctx, "GET", path, nil, &scan); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Drone at %s facing %s\n", scan.Position, scan.Facing)
	for _, d := range scan.Detections {
		fmt.Fprintf(&b, "- %s (%s)\n", d.Describe(), d.Position)
	}
	b.WriteString(scan.Summary)
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/solution")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var solution service.SolutionResult
	if err := c.apiCall(ctx, "GET", path, nil, &solution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !solution.Found {
		return mcp.NewToolResultText(solution.Message), nil
	}
	var b strings.Builder
	b.WriteString(solution.Message + "\n\n")
	for i, cmd := range solution.Commands {
		fmt.Fprintf(&b, "%d. %s\n", i+1, cmd)
	}
	fmt.Fprintf(&b, "\nStates explored: %d", solution.Explored)
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Layouts:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Pictures: %d, Trees: %d\n\n",
			cfg.ConfigID, cfg.Format, cfg.Description, cfg.GridSize, cfg.GridSize, cfg.ShotBudget, cfg.Trees)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Drone Safari - Complete Instructions

GAME OBJECTIVE:
Photograph the zebra, the elephant and the oryx. Each layout gives you a fixed
number of pictures; spending the last one without all three animals loses the game.

COORDINATES:
• Rows grow toward the North, columns toward the East. (0,0) is the south-west corner.
• The drone always faces North, East, South or West.

COMMANDS:
• move forward|backward|left|right - fly one cell relative to the heading; the heading stays the same
• turn left|right - rotate a quarter turn in place (left is counterclockwise)
• picture - photograph the cell exactly two steps ahead
• reset - restart the layout
Shorthands: f, b, tl, tr, p.

CAMERA:
• The picture frames the cell two steps ahead. A tree on the cell in between blocks the view.
• A picture is spent whatever it frames: trees, empty ground and animals already photographed all waste it.
• Photographed animals stay on the grid.

CRASHES (game over):
• Flying off the grid
• Flying into a tree
• Flying into an animal

SCARING (game over):
• Ending a move next to an animal (including diagonally) scares it away and ends
  the game, even if that animal was already photographed.

SENSORS:
• Pass sensors=true on move, turn or take_picture, or call scan, to list trees,
  animals, scared-animal cells and grid edges within two cells.

GRID LEGEND:
^ > v < Drone (pointing its heading), T Tree, Z Zebra, E Elephant, O Oryx,
! Scared animal cell, * Photographed cell, . Empty

STRATEGY:
• Approach each animal so it ends up two cells straight ahead, never adjacent.
• Use scan before moving into unknown territory.
• solve shows the shortest winning plan from the current state.

After the game ends every command is ignored until reset.`

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var status engine.Status
	if err := c.apiCall(ctx, "GET", path, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&status, engine.Position{Row: row, Col: col})), nil
}

func describeCell(status *engine.Status, p engine.Position) string {
	n := len(status.Grid)
	if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
		return fmt.Sprintf("Cell %s is outside the grid. Rows and columns run 0-%d; flying there crashes the drone.", p, n-1)
	}

	cell := status.Grid[p.Row][p.Col]
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: %s\n", p, cell)

	switch cell {
	case engine.Tree:
		b.WriteString("A tree. Flying into it crashes the drone, and it blocks the camera when directly ahead.\n")
	case engine.Zebra, engine.Elephant, engine.Oryx:
		target, _ := cell.Target()
		if status.Photographed[target] {
			b.WriteString("Already photographed. ")
		} else {
			b.WriteString("Still needs a picture. ")
		}
		b.WriteString("Flying into it crashes the drone; ending a move next to it scares it away and loses the game.\n")
	default:
		b.WriteString("Open ground, safe to fly over.\n")
	}

	if p == status.Position {
		fmt.Fprintf(&b, "The drone is here, facing %s.\n", status.Facing)
	} else {
		dRow, dCol := p.Row-status.Position.Row, p.Col-status.Position.Col
		fmt.Fprintf(&b, "Offset from the drone: %s.\n", engine.FormatOffset(dRow, dCol))
	}
	for _, s := range status.ScaredLocations {
		if s == p {
			b.WriteString("An animal was scared away from here.\n")
		}
	}
	for _, photo := range status.PhotographedLocations {
		if photo.Position == p {
			fmt.Fprintf(&b, "Picture #%d was taken of this cell.\n", photo.Shot)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatus(status *engine.Status) string {
	if status == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s | Facing: %s | Pictures: %d/%d | Photographed: %d/%d | Moves: %d | Turns: %d\n\n",
		status.Position, status.Facing,
		status.ShotsRemaining, status.ShotBudget,
		status.Photographed.Count(), engine.NumTargets,
		status.TotalMoves, status.TotalTurns)

	for _, line := range status.GridView {
		b.WriteString(line + "\n")
	}

	if status.GameOver {
		if status.GameWon {
			b.WriteString("\nVICTORY!")
		} else {
			fmt.Fprintf(&b, "\nGAME OVER (%s)", status.FailureReason)
		}
	}

	if status.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", status.Message)
	}
	return b.String()
}

func statusMark(s engine.ResultStatus) string {
	switch s {
	case engine.Applied:
		return "✓"
	case engine.Ignored:
		return "-"
	}
	return "✗"
}

func formatStep(step *service.StepInfo) string {
	return fmt.Sprintf("%d. %s %s %s→%s %s→%s pictures=%d [%s]",
		step.Idx, step.Command, statusMark(step.Status),
		step.From, step.To, step.FacingBefore, step.FacingAfter,
		step.ShotsAfter, step.Event)
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", statusMark(result.Status), result.Status, result.Message)
	if result.Step != nil {
		b.WriteString("Step: " + formatStep(result.Step) + "\n")
	}
	b.WriteString("\n" + formatStatus(result.GameState))
	return b.String()
}

func formatBulkResult(result *service.BulkResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Executed %d/%d commands", result.CommandsExecuted, result.RequestedCommands)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on command %d: %s", result.StoppedOnCommand, result.StopReasonCode)
		if result.StoppedReason != "" {
			b.WriteString(" - " + result.StoppedReason)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Start %s %s → End %s %s | Pictures %d → %d | New photos: %d\n\n",
		result.StartPos, result.StartedFacing, result.EndPos, result.EndFacing,
		result.StartShots, result.EndShots, result.PhotosDelta)

	for i := range result.Steps {
		b.WriteString(formatStep(&result.Steps[i]) + "\n")
	}

	b.WriteString("\n" + formatStatus(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalCommands)

	for _, entry := range history.Entries {
		fmt.Fprintf(&b, "%d. %s %s [%s] at %s facing %s, pictures=%d\n",
			entry.Seq, entry.Command, statusMark(entry.Status), entry.Event,
			entry.Position, entry.Facing, entry.ShotsRemaining)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d.", history.Page+1)
	}
	return b.String()
}
