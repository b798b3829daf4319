// Package api serves the question answering service over HTTP.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8001")
	ListenAddr string

	// StaticDir, when set, is served at "/" for the web frontend.
	StaticDir string

	// PreviewChars caps answers in history listings.
	PreviewChars int

	// MCPDisabled serves an empty MCP server at /mcp.
	MCPDisabled bool
}
