// Package provider defines the interface to the language-model service
// and the conversation types exchanged with it.
package provider

import (
	"context"
	"strings"

	"github.com/campuslink/campuslink/internal/tool"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult is the outcome of one executed tool call, fed back to the
// model. Exactly one of Payload or Err is meaningful.
type ToolResult struct {
	Name    string
	Payload map[string]any
	Err     string
}

// Part is one element of a turn: plain text, a tool call requested by
// the model, or a tool result returned to it.
type Part struct {
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// Turn is one message-equivalent unit of a conversation. Turns are
// value types and are never mutated after being appended to a sequence.
type Turn struct {
	Role  Role
	Parts []Part
}

// TextTurn builds a single-part text turn.
func TextTurn(role Role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}

// Text returns the concatenated text parts of the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// StopReason reports why the model stopped generating.
type StopReason string

const (
	StopNormal      StopReason = "normal"
	StopSafety      StopReason = "safety"
	StopTruncated   StopReason = "truncated"
	StopToolStall   StopReason = "tool_stall"
	StopUnspecified StopReason = "unspecified"
)

// Reply is one model turn. If ToolCalls is non-empty the model is
// requesting tool execution and Text must not be treated as final.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
	Stop      StopReason
}

// Provider communicates with the language-model service.
type Provider interface {
	// Generate sends the turn sequence and tool catalogue to the model
	// and returns its reply.
	Generate(ctx context.Context, turns []Turn, tools []tool.Declaration) (*Reply, error)
}
