package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campuslink/campuslink/internal/provider"
)

// Executor runs data tool calls. Each call is independent: one tool
// failing produces an error result for that tool only and never aborts
// or blocks its siblings.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExecutor creates an Executor. timeout bounds each individual tool
// call so one slow tool cannot stall the fan-in indefinitely.
func NewExecutor(registry *Registry, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, timeout: timeout, logger: logger}
}

// ExecuteAll runs all calls concurrently and returns one result per
// call, in input order. An empty input returns an empty result set
// without spawning anything.
func (e *Executor) ExecuteAll(ctx context.Context, calls []provider.ToolCall, userID string) []provider.ToolResult {
	if len(calls) == 0 {
		return nil
	}

	results := make([]provider.ToolResult, len(calls))

	// Fast path: single call, no concurrency overhead.
	if len(calls) == 1 {
		results[0] = e.executeOne(ctx, calls[0], userID)
		return results
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, c provider.ToolCall) {
			defer wg.Done()
			results[idx] = e.executeOne(ctx, c, userID)
		}(i, call)
	}
	wg.Wait()

	return results
}

// executeOne runs a single call. Every call yields an observable
// result; failures are carried in the result's Err field.
func (e *Executor) executeOne(ctx context.Context, call provider.ToolCall, userID string) (result provider.ToolResult) {
	result = provider.ToolResult{Name: call.Name}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "tool", call.Name, "panic", r)
			result.Payload = nil
			result.Err = fmt.Sprintf("tool %q failed", call.Name)
		}
	}()

	def, err := e.registry.Resolve(call.Name)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	if def.Kind != KindData {
		result.Err = fmt.Sprintf("tool %q is not executable", call.Name)
		return result
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := def.Run(callCtx, call.Args, userID)
	if err != nil {
		e.logger.Warn("tool failed", "tool", call.Name, "error", err, "elapsed", time.Since(start))
		result.Err = err.Error()
		return result
	}

	e.logger.Debug("tool succeeded", "tool", call.Name, "elapsed", time.Since(start))
	result.Payload = payload
	return result
}
