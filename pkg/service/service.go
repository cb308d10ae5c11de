// Package service runs the MouseTron record pipeline: history storage,
// memory update, artifact rewrite and event publishing. It is the single
// owner of the engine lock; the HTTP API, the MCP tools and the CLI all go
// through a Service.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aircode610/MouseTron/pkg/artifacts"
	"github.com/aircode610/MouseTron/pkg/eventstream"
	"github.com/aircode610/MouseTron/pkg/logger"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/worker"
)

// ErrNoStorage is returned by history queries when no storage is configured.
var ErrNoStorage = errors.New("execution history storage not configured")

// StorageError wraps a history storage failure during Record. Memory is not
// updated when it occurs.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storing execution: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RejectObserver is notified when an execution is rejected before reaching
// memory.
type RejectObserver interface {
	BlockRejected()
}

// Config wires a Service.
type Config struct {
	// Memory is the recommendation engine. Required.
	Memory memory.Driver

	// Storage persists the execution history. Optional.
	Storage storage.Driver

	// Artifacts rewrites recommendation files after each record. Optional.
	Artifacts *artifacts.Writer

	// Pool publishes execution events. Optional.
	Pool *worker.Pool

	// MaxBlockLen is the longest accepted execution. Defaults to
	// subseq.DefaultMaxLen.
	MaxBlockLen int

	Observer RejectObserver
	Logger   *slog.Logger
}

// Result is the outcome of a successful Record.
type Result struct {
	// Execution is the stored history row, nil without storage.
	Execution       *storage.Execution
	Tools           []string
	Recommendations *memory.Recommendations
}

// Service serializes all engine access.
type Service struct {
	mu     sync.Mutex
	config Config
	logger *slog.Logger
}

// New creates a Service.
func New(c Config) (*Service, error) {
	if c.Memory == nil {
		return nil, memory.ErrNotConfigured
	}
	if c.MaxBlockLen <= 0 {
		c.MaxBlockLen = subseq.DefaultMaxLen
	}
	l := c.Logger
	if l == nil {
		l = logger.Nop()
	}
	return &Service{config: c, logger: l}, nil
}

// Record validates steps, stores them in the history, feeds them to memory
// and returns the refreshed recommendations. Empty executions return
// memory.ErrEmptyExecution and over-long ones subseq.ErrBlockTooLong; neither
// is stored. A memory persistence failure is logged and does not fail the
// call since the in-memory state is already committed and the next flush
// rewrites every container.
func (s *Service) Record(ctx context.Context, steps []string) (*Result, error) {
	names := memory.NormalizeNames(steps)
	if len(names) == 0 {
		s.reject()
		return nil, memory.ErrEmptyExecution
	}
	if len(names) > s.config.MaxBlockLen {
		s.reject()
		return nil, fmt.Errorf("%w: %d tools (limit %d)", subseq.ErrBlockTooLong, len(names), s.config.MaxBlockLen)
	}

	s.mu.Lock()
	result, err := s.record(ctx, names)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.config.Pool != nil {
		var id int64
		if result.Execution != nil {
			id = result.Execution.ID
		}
		s.config.Pool.Enqueue(worker.Job{
			Event: eventstream.NewExecutionRecordedEvent(id, names, result.Recommendations),
		})
	}

	return result, nil
}

func (s *Service) record(ctx context.Context, names []string) (*Result, error) {
	result := &Result{Tools: names}

	if s.config.Storage != nil {
		exec, err := s.config.Storage.Put(ctx, names)
		if err != nil {
			return nil, &StorageError{Err: err}
		}
		result.Execution = exec
	}

	if err := s.config.Memory.RecordExecution(ctx, names); err != nil {
		if errors.Is(err, memory.ErrEmptyExecution) || errors.Is(err, subseq.ErrBlockTooLong) {
			return nil, err
		}
		s.logger.Error("memory persistence failed after record", "error", err)
	}

	recs, err := s.config.Memory.GenerateRecommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating recommendations: %w", err)
	}
	result.Recommendations = recs

	if s.config.Artifacts != nil {
		if err := s.config.Artifacts.Write(recs); err != nil {
			s.logger.Error("writing recommendation artifacts", "dir", s.config.Artifacts.Dir, "error", err)
		}
	}

	s.logger.Info("execution recorded",
		"tools", len(names),
		"recent", len(recs.Recent),
		"stable", len(recs.Stable),
		"singles", len(recs.Singles),
	)
	return result, nil
}

func (s *Service) reject() {
	if s.config.Observer != nil {
		s.config.Observer.BlockRejected()
	}
}

// Recommend returns the current recommendations without mutating memory.
func (s *Service) Recommend(ctx context.Context) (*memory.Recommendations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Memory.GenerateRecommendations(ctx)
}

// Recent returns up to limit executions, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*storage.Execution, error) {
	if s.config.Storage == nil {
		return nil, ErrNoStorage
	}
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}
	return s.config.Storage.Recent(ctx, limit)
}

// Execution returns one stored execution.
func (s *Service) Execution(ctx context.Context, id int64) (*storage.Execution, error) {
	if s.config.Storage == nil {
		return nil, ErrNoStorage
	}
	return s.config.Storage.Get(ctx, id)
}

// Stats summarizes the execution history.
func (s *Service) Stats(ctx context.Context) (*storage.Stats, error) {
	if s.config.Storage == nil {
		return nil, ErrNoStorage
	}
	return s.config.Storage.Stats(ctx)
}

// Close drains the event pool and closes memory and storage.
func (s *Service) Close() error {
	var errs []error
	if s.config.Pool != nil {
		if err := s.config.Pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event pool: %w", err))
		}
	}

	s.mu.Lock()
	if err := s.config.Memory.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing memory: %w", err))
	}
	s.mu.Unlock()

	if s.config.Storage != nil {
		if err := s.config.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
