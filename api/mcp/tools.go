package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
)

var (
	recommendToolName    = "recommend_tools"
	recommendDescription = "Recommend tools and tool combinations to use next. Returns three ranked lists learned from past executions: recent (combinations frequent in the latest executions), stable (long-term frequent combinations) and singles (most recently used tools)."

	recordToolName    = "record_execution"
	recordDescription = "Record the ordered tool names of one completed execution so future recommendations learn from it."
)

// RecommendInput is the (empty) input of the recommend_tools tool.
type RecommendInput struct{}

// Tool is one member of a recommendation.
type Tool struct {
	ToolName    string `json:"tool_name"`
	Description string `json:"description,omitempty"`
}

// Recommendation is one ranked recommendation. Multi-tool combinations list
// their members in Tools.
type Recommendation struct {
	ToolName    string `json:"tool_name"`
	Description string `json:"description,omitempty"`
	Tools       []Tool `json:"tools,omitempty"`
}

// RecommendOutput holds the three ranked lists.
type RecommendOutput struct {
	Recent  []Recommendation `json:"recent"`
	Stable  []Recommendation `json:"stable"`
	Singles []Recommendation `json:"singles"`
}

// RecordInput is the input of the record_execution tool.
type RecordInput struct {
	Tools []string `json:"tools" jsonschema:"tool names of one completed execution, in invocation order"`
}

// RecordOutput is the result of record_execution.
type RecordOutput struct {
	ToolCount       int             `json:"tool_count"`
	ExecutionID     int64           `json:"execution_id,omitempty"`
	Recommendations RecommendOutput `json:"recommendations"`
}

func (s *Server) handleRecommend(ctx context.Context, _ *mcp.CallToolRequest, _ RecommendInput) (*mcp.CallToolResult, RecommendOutput, error) {
	recs, err := s.config.Service.Recommend(ctx)
	if err != nil {
		s.config.Logger.Error("MCP recommend failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to generate recommendations: %v", err)), toOutput(nil), nil
	}

	return textResult(toOutput(recs))
}

func (s *Server) handleRecord(ctx context.Context, _ *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	s.config.Logger.Debug("MCP record request", "tools", len(input.Tools))

	empty := RecordOutput{Recommendations: toOutput(nil)}
	result, err := s.config.Service.Record(ctx, input.Tools)
	switch {
	case errors.Is(err, memory.ErrEmptyExecution):
		return errorResult("tools is required"), empty, nil
	case errors.Is(err, subseq.ErrBlockTooLong):
		return errorResult(err.Error()), empty, nil
	case err != nil:
		s.config.Logger.Error("MCP record failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to record execution: %v", err)), empty, nil
	}

	output := RecordOutput{
		ToolCount:       len(result.Tools),
		Recommendations: toOutput(result.Recommendations),
	}
	if result.Execution != nil {
		output.ExecutionID = result.Execution.ID
	}

	return textResult(output)
}

// textResult returns output both as structured content and as serialized
// JSON text for clients that only read text content.
func textResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func toOutput(recs *memory.Recommendations) RecommendOutput {
	if recs == nil {
		return RecommendOutput{Recent: []Recommendation{}, Stable: []Recommendation{}, Singles: []Recommendation{}}
	}
	return RecommendOutput{
		Recent:  toRecommendations(recs.Recent),
		Stable:  toRecommendations(recs.Stable),
		Singles: toRecommendations(recs.Singles),
	}
}

func toRecommendations(items []memory.Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		rec := Recommendation{ToolName: item.ToolName, Description: item.Description}
		for _, member := range item.Tools {
			rec.Tools = append(rec.Tools, Tool{ToolName: member.ToolName, Description: member.Description})
		}
		out = append(out, rec)
	}
	return out
}
