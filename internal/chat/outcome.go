package chat

import "github.com/campuslink/campuslink/internal/provider"

// Outcome is the single result of one conversation round trip.
// The handler renders it via type switch.
type Outcome interface {
	isOutcome()
}

// TextOutcome carries the model's final answer.
type TextOutcome struct {
	Text string
}

func (TextOutcome) isOutcome() {}

// UIActionOutcome asks the client to open a form instead of answering
// in text.
type UIActionOutcome struct {
	Directive UIActionDirective
}

func (UIActionOutcome) isOutcome() {}

// FailureOutcome reports that the model could not produce a useful
// answer. The turn was still handled; callers surface a user-safe
// message, not an HTTP error.
type FailureOutcome struct {
	Kind FailureKind
}

func (FailureOutcome) isOutcome() {}

// FailureKind identifies why the loop terminated without an answer.
type FailureKind string

const (
	FailureSafety       FailureKind = "safety"
	FailureTruncated    FailureKind = "truncated"
	FailureToolStall    FailureKind = "tool_stall"
	FailureLoopExceeded FailureKind = "loop_exceeded"
	FailureUnspecified  FailureKind = "unspecified"
)

// failureKind maps a model stop reason to a failure kind.
func failureKind(stop provider.StopReason) FailureKind {
	switch stop {
	case provider.StopSafety:
		return FailureSafety
	case provider.StopTruncated:
		return FailureTruncated
	case provider.StopToolStall:
		return FailureToolStall
	default:
		return FailureUnspecified
	}
}

// User-safe messages. Internal error detail never reaches the caller.
const (
	msgSafety       = "I can't help with that request. Could we try a different topic?"
	msgTruncated    = "My answer got cut off before it was finished. Could you ask for a shorter or more specific answer?"
	msgToolStall    = "I got stuck looking that up. Could you rephrase your question?"
	msgLoopExceeded = "That took more steps than I can handle in one go. Could you break it into a smaller question?"
	msgUnspecified  = "I wasn't able to come up with an answer. Please try again."
	msgOpeningForm  = "Opening that up for you now."
	msgBadDirective = "I tried to open a form for you but didn't have enough detail. Could you tell me a bit more about what you want to do?"
)

// UserMessage maps an outcome to the aiMessage string shown to the
// user.
func UserMessage(o Outcome) string {
	switch v := o.(type) {
	case TextOutcome:
		return v.Text
	case UIActionOutcome:
		return msgOpeningForm
	case FailureOutcome:
		switch v.Kind {
		case FailureSafety:
			return msgSafety
		case FailureTruncated:
			return msgTruncated
		case FailureToolStall:
			return msgToolStall
		case FailureLoopExceeded:
			return msgLoopExceeded
		default:
			return msgUnspecified
		}
	default:
		return msgUnspecified
	}
}
