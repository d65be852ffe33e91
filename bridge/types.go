// Package bridge lets other processes drive a running tray: a Unix socket
// speaking one JSON request per line, and a websocket bus satellites use to
// publish search input.
package bridge

import (
	"context"
	"os"
	"path/filepath"

	"launchtray/model"
	"launchtray/tray"
)

// Request types.
const (
	TypeSearch   = "Search"
	TypeSubmit   = "Submit"
	TypeSnapshot = "Snapshot"
	TypeRun      = "Run"
	TypePin      = "Pin"
	TypeUnpin    = "Unpin"
)

// Request is the wire format for requests sent over the Unix socket.
type Request struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"` // Search
	Entry string `json:"entry,omitempty"` // Run, Pin, Unpin
}

// Response is the wire format for responses sent over the Unix socket.
type Response struct {
	Type     string           `json:"type"` // "Entries", "Snapshot", "Outcome", "OK", "Error"
	Entries  []model.AppEntry `json:"entries,omitempty"`
	Snapshot *tray.Snapshot   `json:"snapshot,omitempty"`
	Outcome  tray.Outcome     `json:"outcome,omitempty"`
	Code     int              `json:"code,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// Router handles bridge requests. *tray.Tray implements it.
type Router interface {
	Search(query string) []model.AppEntry
	Submit(ctx context.Context) (model.AppEntry, error)
	Snapshot() tray.Snapshot
	Run(ctx context.Context, id string) error
	Pin(ctx context.Context, id string) (tray.Outcome, error)
	Unpin(ctx context.Context, id string) (tray.Outcome, error)
}

// StateDir returns the per-user launchtray directory, creating it if
// needed.
func StateDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, _ = os.UserHomeDir()
	}
	dir := filepath.Join(configDir, "launchtray")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// SocketPath returns the default path of the bridge Unix socket.
func SocketPath() string {
	return filepath.Join(StateDir(), "launchtray.sock")
}
