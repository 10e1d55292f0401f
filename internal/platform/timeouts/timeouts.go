// Package timeouts defines shared timeout constants used across the service.
package timeouts

import "time"

// UserServiceRequest caps a single call to the remote user service when no
// explicit timeout is configured.
const UserServiceRequest = 5 * time.Second

// HealthProbe caps the upstream ping issued by the health route.
const HealthProbe = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionSweep is the interval between idle session sweeps.
const SessionSweep = time.Minute
