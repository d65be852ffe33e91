package mcp

import "encoding/json"

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema any             `json:"inputSchema"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// CallToolResult is the result of calling a tool.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents a single content item in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func textResult(text string) CallToolResult {
	return CallToolResult{Content: []Content{{Type: "text", Text: text}}}
}

func errorResult(err error) CallToolResult {
	return CallToolResult{Content: []Content{{Type: "text", Text: err.Error()}}, IsError: true}
}

var entrySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"entry": map[string]any{"type": "string", "description": "Entry id (the document \"name\")."},
	},
	"required": []string{"entry"},
}

var readOnly = json.RawMessage(`{"readOnlyHint":true}`)

// trayTools lists the tools the server exposes.
var trayTools = []Tool{
	{
		Name:        "tray_search",
		Description: "Filter the tray list by title and return the matching entries.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Case-insensitive title substring; empty restores the full list."},
			},
		},
	},
	{
		Name:        "tray_snapshot",
		Description: "Return what the tray currently shows: list, hotbar, style and sizing.",
		InputSchema: map[string]any{"type": "object"},
		Annotations: readOnly,
	},
	{
		Name:        "tray_run",
		Description: "Launch an entry from its manifest.",
		InputSchema: entrySchema,
	},
	{
		Name:        "tray_pin",
		Description: "Drag an entry from the list into the hotbar. Rejected when the hotbar is full.",
		InputSchema: entrySchema,
	},
	{
		Name:        "tray_unpin",
		Description: "Remove an entry from the hotbar.",
		InputSchema: entrySchema,
	},
}
