// Package display hosts the page a screen's browser shows.
//
// The page embeds the selected URL in a full-screen frame and listens on
// the /events WebSocket for session events. When nothing can be shown
// because the screen is not connected, it shows a notice instead.
package display
