package server

import "time"

// Limits for the API listener. The metrics listener only sets readHeaderTimeout.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// shutdownTimeout bounds poller exit, HTTP drain and presenter drain together.
// Tests shorten it.
var shutdownTimeout = 10 * time.Second
