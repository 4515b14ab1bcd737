package syncchan

import (
	"context"

	"github.com/coder/websocket"
	"github.com/creachadair/jrpc2/channel"
)

// WSChannel adapts a websocket.Conn to the jrpc2 channel.Channel interface.
// Each message is one JSON-RPC text frame.
type WSChannel struct {
	conn *websocket.Conn
	ctx  context.Context
}

var _ channel.Channel = (*WSChannel)(nil)

// NewWSChannel wraps conn. Reads and writes are bound to ctx.
func NewWSChannel(ctx context.Context, conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn, ctx: ctx}
}

// Send writes a JSON-RPC message to the WebSocket connection.
func (c *WSChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, websocket.MessageText, data)
}

// Recv reads a JSON-RPC message from the WebSocket connection.
func (c *WSChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close shuts down the WebSocket connection with a normal closure status.
func (c *WSChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
