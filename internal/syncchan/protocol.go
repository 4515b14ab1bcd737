package syncchan

import "time"

// Notification methods exchanged between a screen and its controller.
const (
	MethodUpdate        = "update"
	MethodReassign      = "reassign"
	MethodRequestUpdate = "requestUpdate"
	MethodReload        = "reload"
	MethodHeartbeat     = "heartbeat"
)

const (
	// EndpointPath is where controllers accept screen connections.
	EndpointPath = "/screens"
	// SessionHeader carries the id a client keeps across reconnects.
	SessionHeader = "X-Warpscreen-Session"
	// DefaultHeartbeatDelay is how long a screen waits before answering a
	// controller heartbeat.
	DefaultHeartbeatDelay = 3 * time.Second
	// DefaultReadLimit bounds a single inbound message.
	DefaultReadLimit = 1 << 20
)
