// Package mcp provides an MCP (Model Context Protocol) server exposing
// MouseTron recommendations to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aircode610/MouseTron/pkg/service"
	"github.com/aircode610/MouseTron/pkg/utils"
)

type Config struct {
	// Service records executions and serves recommendations.
	Service *service.Service

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the recommendation tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mousetron",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Service == nil {
			return nil, errors.New("service is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        recommendToolName,
			Description: recommendDescription,
		}, s.handleRecommend)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        recordToolName,
			Description: recordDescription,
		}, s.handleRecord)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying SDK server, used to connect other
// transports such as stdio.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
