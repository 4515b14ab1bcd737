package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
)

// ControlClient calls the control endpoint of a running controller.
type ControlClient struct {
	cli *jrpc2.Client
}

// NewControlClient connects to the controller at address (for example
// "http://localhost:8090").
func NewControlClient(address string) (*ControlClient, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("parse controller address: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("unsupported controller scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + ControlPath
	ch := jhttp.NewChannel(u.String(), nil)
	return &ControlClient{cli: jrpc2.NewClient(ch, nil)}, nil
}

// Broadcast pushes method with params to every connected screen.
func (c *ControlClient) Broadcast(ctx context.Context, method string, params any) (int, error) {
	p := BroadcastParams{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return 0, fmt.Errorf("encode params: %w", err)
		}
		p.Params = raw
	}
	var res BroadcastResult
	if err := c.cli.CallResult(ctx, "broadcast", p, &res); err != nil {
		return 0, err
	}
	return res.Delivered, nil
}

// Screens lists the screens connected to the controller.
func (c *ControlClient) Screens(ctx context.Context) ([]ScreenInfo, error) {
	var res []ScreenInfo
	if err := c.cli.CallResult(ctx, "screens", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Close releases the client.
func (c *ControlClient) Close() error {
	return c.cli.Close()
}
