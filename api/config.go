// Package api provides the MouseTron HTTP API: execution intake, history
// queries, recommendations, metrics and the MCP endpoint.
package api

import (
	"net/http"

	"github.com/aircode610/MouseTron/pkg/metrics"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Metrics enables GET /metrics and request counting when set.
	Metrics *metrics.Recorder

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}
