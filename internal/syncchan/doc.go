// Package syncchan keeps a screen session synchronized with its controller.
//
// The screen dials the controller's /screens WebSocket endpoint and acts as
// a JSON-RPC 2.0 client whose peer pushes notifications: update, reassign,
// requestUpdate, reload and heartbeat. Outbound traffic is limited to
// update and heartbeat notifications. The connection is re-established with
// exponential backoff whenever it drops; a reconnect is indistinguishable
// from the first connect.
package syncchan
