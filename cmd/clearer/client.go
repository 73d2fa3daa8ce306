package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
)

// Client drives one session over the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is bound to
func (c *Client) SessionID() string {
	return c.sessionID
}

// Use binds the client to an existing session
func (c *Client) Use(sessionID string) {
	c.sessionID = sessionID
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var req any
	if configID != "" {
		req = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) State(ctx context.Context) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &snap); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &snap, nil
}

func (c *Client) Walk(ctx context.Context, dirs []engine.Direction) (*service.WalkResult, error) {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = string(d)
	}

	var result service.WalkResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/walk"), map[string][]string{"directions": names}, &result); err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return &result, nil
}

func (c *Client) Advance(ctx context.Context, ms int) (*service.AdvanceResult, error) {
	var result service.AdvanceResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/advance"), map[string]int{"ms": ms}, &result); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	return &result, nil
}

type resetResponse struct {
	Message  string           `json:"message"`
	Snapshot *engine.Snapshot `json:"snapshot"`
}

func (c *Client) Reset(ctx context.Context) (*engine.Snapshot, error) {
	var resp resetResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.Snapshot, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
