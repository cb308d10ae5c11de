package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/service"
	"github.com/aircode610/MouseTron/pkg/storage"
)

// RecordRequest is the body of POST /api/tools.
type RecordRequest struct {
	// Steps are the tool names of one completed execution, in order.
	Steps []string `json:"steps"`
}

// RecordResponse is returned by POST /api/tools.
type RecordResponse struct {
	Status          string                  `json:"status"`
	Message         string                  `json:"message"`
	ToolCount       int                     `json:"tool_count"`
	ExecutionID     int64                   `json:"execution_id,omitempty"`
	Recommendations *memory.Recommendations `json:"recommendations,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorJSON(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(ErrorResponse{Status: "error", Message: msg})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleRecord handles POST /api/tools.
func (s *Server) handleRecord(c *fiber.Ctx) error {
	var req RecordRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	result, err := s.svc.Record(c.UserContext(), req.Steps)
	var storageErr *service.StorageError
	switch {
	case errors.Is(err, memory.ErrEmptyExecution):
		return errorJSON(c, fiber.StatusBadRequest, "No tool names provided")
	case errors.Is(err, subseq.ErrBlockTooLong):
		return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &storageErr):
		s.logger.Error("storing execution", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Error saving to database")
	case err != nil:
		s.logger.Error("recording execution", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := RecordResponse{
		Status:          "success",
		Message:         fmt.Sprintf("Successfully saved %d tool names", len(result.Tools)),
		ToolCount:       len(result.Tools),
		Recommendations: result.Recommendations,
	}
	if result.Execution != nil {
		resp.ExecutionID = result.Execution.ID
	}
	return c.JSON(resp)
}

// handleRecent handles GET /api/tools and GET /api/tools/recent.
// Query parameters:
//   - limit (optional, default 10): number of executions to return
func (s *Server) handleRecent(c *fiber.Ctx) error {
	limit := storage.DefaultRecentLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return errorJSON(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	execs, err := s.svc.Recent(c.UserContext(), limit)
	if errors.Is(err, service.ErrNoStorage) {
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		s.logger.Error("listing executions", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(execs)
}

// handleGetExecution handles GET /api/tools/:id.
func (s *Server) handleGetExecution(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "id must be a positive integer")
	}

	exec, err := s.svc.Execution(c.UserContext(), int64(id))
	var notFound storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoStorage):
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(exec)
}

// handleStats handles GET /api/tools/stats.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.svc.Stats(c.UserContext())
	if errors.Is(err, service.ErrNoStorage) {
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}

// handleRecommendations handles GET /api/recommendations.
func (s *Server) handleRecommendations(c *fiber.Ctx) error {
	recs, err := s.svc.Recommend(c.UserContext())
	if err != nil {
		s.logger.Error("generating recommendations", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(recs)
}
