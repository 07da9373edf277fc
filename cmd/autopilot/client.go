package main

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

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/service"
)

// Client drives one session through the REST API.
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is bound to.
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a session on configID and binds the client to it.
// An empty configID uses the server's default layout.
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

// Resume binds the client to an existing session.
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Status(ctx context.Context) (*engine.Status, error) {
	var status engine.Status
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/status"), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Solution(ctx context.Context) (*service.SolutionResult, error) {
	var solution service.SolutionResult
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/solution"), nil, &solution); err != nil {
		return nil, err
	}
	return &solution, nil
}

func (c *Client) Reset(ctx context.Context) (*service.CommandResult, error) {
	var result service.CommandResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Command sends one parsed command to its endpoint.
func (c *Client) Command(ctx context.Context, cmd engine.Command) (*service.CommandResult, error) {
	var (
		suffix string
		body   interface{}
	)
	switch cmd.Action {
	case engine.ActionMove:
		suffix, body = "/move", map[string]interface{}{"direction": cmd.Direction, "sensors": cmd.Sensors}
	case engine.ActionTurn:
		suffix, body = "/turn", map[string]interface{}{"direction": cmd.Direction, "sensors": cmd.Sensors}
	case engine.ActionPicture:
		suffix, body = "/picture", map[string]interface{}{"sensors": cmd.Sensors}
	case engine.ActionReset:
		return c.Reset(ctx)
	default:
		return nil, fmt.Errorf("unsupported action %q", cmd.Action)
	}

	var result service.CommandResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath(suffix), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Commands runs a whole sequence in one request.
func (c *Client) Commands(ctx context.Context, commands []string, reset bool) (*service.BulkResult, error) {
	var result service.BulkResult
	body := map[string]interface{}{"commands": commands, "reset": reset}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/commands"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
