package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuslink/campuslink/internal/provider"
)

// Loop is the conversation controller. It sends the user message (with
// normalized history) to the model, inspects the reply for tool calls,
// dispatches them, folds results back into the conversation, and
// repeats until a terminal condition is reached.
//
// No state outlives a single call to Run; the only shared collaborator
// is the read-only registry.
type Loop struct {
	provider  provider.Provider
	registry  *Registry
	executor  *Executor
	logger    *slog.Logger
	maxRounds int
}

// NewLoop creates a Loop. maxRounds bounds the number of model round
// trips per request; past it the loop terminates with a failure outcome
// rather than running up unbounded latency and cost.
func NewLoop(p provider.Provider, registry *Registry, executor *Executor, logger *slog.Logger, maxRounds int) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRounds <= 0 {
		maxRounds = 8
	}
	return &Loop{
		provider:  p,
		registry:  registry,
		executor:  executor,
		logger:    logger,
		maxRounds: maxRounds,
	}
}

// Run drives one conversational round trip for userID. history must
// already be normalized. The returned error is reserved for model
// service faults and cancellation; everything the assistant "handled",
// including its own failures to answer, comes back as an Outcome.
func (l *Loop) Run(ctx context.Context, userID, message string, history []provider.Turn) (Outcome, error) {
	turns := make([]provider.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, provider.TextTurn(provider.RoleUser, message))

	decls := l.registry.Declarations()

	for round := 0; round < l.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reply, err := l.provider.Generate(ctx, turns, decls)
		if err != nil {
			return nil, fmt.Errorf("provider.Generate: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			if reply.Text != "" {
				return TextOutcome{Text: reply.Text}, nil
			}
			l.logger.Info("model returned no output", "user", userID, "stop", reply.Stop, "round", round)
			return FailureOutcome{Kind: failureKind(reply.Stop)}, nil
		}

		// First UI-action request wins: terminate with its directive
		// and discard the rest of the batch. A single deterministic UI
		// transition beats concurrent or conflicting ones.
		if outcome, ok := l.intercept(reply.ToolCalls, userID); ok {
			return outcome, nil
		}

		turns = append(turns, modelTurn(reply))

		results := l.executor.ExecuteAll(ctx, reply.ToolCalls, userID)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		turns = append(turns, resultsTurn(results))
	}

	l.logger.Warn("round limit reached", "user", userID, "max_rounds", l.maxRounds)
	return FailureOutcome{Kind: FailureLoopExceeded}, nil
}

// intercept scans the batch for the first UI-action request and
// converts it into a terminal outcome. A malformed directive is
// recovered into a clarifying text outcome instead of failing the
// request.
func (l *Loop) intercept(calls []provider.ToolCall, userID string) (Outcome, bool) {
	for _, call := range calls {
		def, err := l.registry.Resolve(call.Name)
		if err != nil || def.Kind != KindUIAction {
			continue
		}

		directive, err := buildDirective(def, call)
		if err != nil {
			if errors.Is(err, ErrInvalidDirective) {
				l.logger.Info("ui directive rejected", "user", userID, "tool", call.Name, "error", err)
				return TextOutcome{Text: msgBadDirective}, true
			}
			l.logger.Error("ui directive failed", "user", userID, "tool", call.Name, "error", err)
			return TextOutcome{Text: msgBadDirective}, true
		}

		l.logger.Info("ui action intercepted", "user", userID, "tool", call.Name, "modal", directive.ModalID, "discarded", len(calls)-1)
		return UIActionOutcome{Directive: directive}, true
	}
	return nil, false
}

// modelTurn records the model's tool-call request in the conversation.
func modelTurn(reply *provider.Reply) provider.Turn {
	parts := make([]provider.Part, 0, len(reply.ToolCalls)+1)
	if reply.Text != "" {
		parts = append(parts, provider.Part{Text: reply.Text})
	}
	for i := range reply.ToolCalls {
		parts = append(parts, provider.Part{ToolCall: &reply.ToolCalls[i]})
	}
	return provider.Turn{Role: provider.RoleModel, Parts: parts}
}

// resultsTurn folds tool results into a single turn fed back to the
// model.
func resultsTurn(results []provider.ToolResult) provider.Turn {
	parts := make([]provider.Part, 0, len(results))
	for i := range results {
		parts = append(parts, provider.Part{ToolResult: &results[i]})
	}
	return provider.Turn{Role: provider.RoleUser, Parts: parts}
}
