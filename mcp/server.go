// Package mcp serves the tray as MCP tools over stdio JSON-RPC, forwarding
// every call to a running tray through the bridge.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"launchtray/bridge"
	"launchtray/model"
	"launchtray/tray"
)

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id,omitempty"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonrpcError `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TrayClient is the tray surface the tools call. *bridge.Client implements
// it.
type TrayClient interface {
	Search(query string) ([]model.AppEntry, error)
	Snapshot() (tray.Snapshot, error)
	Run(id string) error
	Pin(id string) (tray.Outcome, error)
	Unpin(id string) (tray.Outcome, error)
}

// Server answers MCP requests for one client.
type Server struct {
	client TrayClient
	logger *slog.Logger
}

// NewServer returns a server forwarding to client.
func NewServer(client TrayClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{client: client, logger: logger.With("component", "mcp")}
}

// RunMCPServer serves stdin/stdout against the tray listening on sockPath.
func RunMCPServer(sockPath string, logger *slog.Logger) error {
	return NewServer(bridge.NewClient(sockPath), logger).Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC message per line from r and writes responses to
// w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("Failed to parse request", "error", err)
			_ = encoder.Encode(jsonrpcResponse{
				JSONRPC: "2.0",
				Error:   &jsonrpcError{Code: -32700, Message: "parse error: " + err.Error()},
			})
			continue
		}

		resp := s.handleMethod(&req)
		if resp == nil {
			// Notification, no response needed.
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("Failed to write response", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read error: %w", err)
	}
	return nil
}

func (s *Server) handleMethod(req *jsonrpcRequest) *jsonrpcResponse {
	switch req.Method {
	case "initialize":
		return result(req, map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "launchtray",
				"version": "1.0.0",
			},
		})

	case "notifications/initialized":
		return nil

	case "tools/list":
		return result(req, map[string]any{"tools": trayTools})

	case "tools/call":
		var params struct {
			Name      string `json:"name"`
			Arguments struct {
				Query string `json:"query"`
				Entry string `json:"entry"`
			} `json:"arguments"`
		}
		if req.Params != nil {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return failure(req, -32602, "invalid params: "+err.Error())
			}
		}
		out, err := s.callTool(params.Name, params.Arguments.Query, params.Arguments.Entry)
		if err != nil {
			s.logger.Warn("Tool call failed", "tool", params.Name, "error", err)
			return result(req, errorResult(err))
		}
		return result(req, out)

	default:
		return failure(req, -32601, "method not found: "+req.Method)
	}
}

func (s *Server) callTool(name, query, entry string) (CallToolResult, error) {
	switch name {
	case "tray_search":
		entries, err := s.client.Search(query)
		if err != nil {
			return CallToolResult{}, err
		}
		return jsonResult(entries)

	case "tray_snapshot":
		snap, err := s.client.Snapshot()
		if err != nil {
			return CallToolResult{}, err
		}
		return jsonResult(snap)

	case "tray_run":
		if entry == "" {
			return CallToolResult{}, fmt.Errorf("entry is required")
		}
		if err := s.client.Run(entry); err != nil {
			return CallToolResult{}, err
		}
		return textResult("launched " + entry), nil

	case "tray_pin", "tray_unpin":
		if entry == "" {
			return CallToolResult{}, fmt.Errorf("entry is required")
		}
		move := s.client.Pin
		if name == "tray_unpin" {
			move = s.client.Unpin
		}
		outcome, err := move(entry)
		if err != nil {
			return CallToolResult{}, err
		}
		return textResult(string(outcome)), nil

	default:
		return CallToolResult{}, fmt.Errorf("unknown tool: %s", name)
	}
}

func jsonResult(v any) (CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return CallToolResult{}, err
	}
	return textResult(string(data)), nil
}

func result(req *jsonrpcRequest, v any) *jsonrpcResponse {
	return &jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: v}
}

func failure(req *jsonrpcRequest, code int, msg string) *jsonrpcResponse {
	return &jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &jsonrpcError{Code: code, Message: msg}}
}
