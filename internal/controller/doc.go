// Package controller is a development controller for warpscreen screens.
//
// Screens connect to /screens over WebSocket and exchange JSON-RPC 2.0
// notifications with the controller. Operators drive the connected
// screens through the JSON-RPC over HTTP endpoint at /control, which is
// what the push command uses.
package controller
