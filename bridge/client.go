package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	"launchtray/model"
	"launchtray/tray"
)

// Client talks to a running tray over the bridge socket. Each call opens a
// fresh connection.
type Client struct {
	sockPath string
}

// NewClient returns a client for sockPath. An empty path means
// SocketPath().
func NewClient(sockPath string) *Client {
	if sockPath == "" {
		sockPath = SocketPath()
	}
	return &Client{sockPath: sockPath}
}

// Search filters the tray list and returns the matches.
func (c *Client) Search(query string) ([]model.AppEntry, error) {
	resp, err := c.call(Request{Type: TypeSearch, Query: query})
	if err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Submit launches the first entry of the current list.
func (c *Client) Submit() (model.AppEntry, error) {
	resp, err := c.call(Request{Type: TypeSubmit})
	if err != nil {
		return model.AppEntry{}, err
	}
	if len(resp.Entries) == 0 {
		return model.AppEntry{}, fmt.Errorf("bridge returned no entry")
	}
	return resp.Entries[0], nil
}

// Snapshot returns what the tray currently shows.
func (c *Client) Snapshot() (tray.Snapshot, error) {
	resp, err := c.call(Request{Type: TypeSnapshot})
	if err != nil {
		return tray.Snapshot{}, err
	}
	if resp.Snapshot == nil {
		return tray.Snapshot{}, fmt.Errorf("bridge returned no snapshot")
	}
	return *resp.Snapshot, nil
}

// Run launches the entry with id.
func (c *Client) Run(id string) error {
	_, err := c.call(Request{Type: TypeRun, Entry: id})
	return err
}

// Pin drags the entry into the hotbar.
func (c *Client) Pin(id string) (tray.Outcome, error) {
	resp, err := c.call(Request{Type: TypePin, Entry: id})
	if err != nil {
		return "", err
	}
	return resp.Outcome, nil
}

// Unpin spills the entry out of the hotbar.
func (c *Client) Unpin(id string) (tray.Outcome, error) {
	resp, err := c.call(Request{Type: TypeUnpin, Entry: id})
	if err != nil {
		return "", err
	}
	return resp.Outcome, nil
}

func (c *Client) call(req Request) (*Response, error) {
	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request %s failed: %w", req.Type, err)
	}
	if resp.Type == "Error" {
		return nil, fmt.Errorf("bridge error (code %d): %s", resp.Code, resp.Message)
	}
	return resp, nil
}

// send opens a connection, writes the request, reads one response, and closes.
func (c *Client) send(req Request) (*Response, error) {
	conn, err := net.Dial("unix", c.sockPath)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to tray bridge at %s: %w (is the tray running?)", c.sockPath, err)
	}
	defer conn.Close()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write failed: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read failed: %w", err)
		}
		return nil, fmt.Errorf("bridge closed connection")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	return &resp, nil
}
