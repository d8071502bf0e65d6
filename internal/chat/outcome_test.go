package chat

import (
	"testing"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/stretchr/testify/assert"
)

func TestFailureKindFromStop(t *testing.T) {
	tests := []struct {
		stop provider.StopReason
		want FailureKind
	}{
		{provider.StopSafety, FailureSafety},
		{provider.StopTruncated, FailureTruncated},
		{provider.StopToolStall, FailureToolStall},
		{provider.StopUnspecified, FailureUnspecified},
		{provider.StopNormal, FailureUnspecified},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, failureKind(tt.stop), "stop=%s", tt.stop)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "hi", UserMessage(TextOutcome{Text: "hi"}))
	assert.Equal(t, msgOpeningForm, UserMessage(UIActionOutcome{}))
	assert.Equal(t, msgSafety, UserMessage(FailureOutcome{Kind: FailureSafety}))
	assert.Equal(t, msgTruncated, UserMessage(FailureOutcome{Kind: FailureTruncated}))
	assert.Equal(t, msgToolStall, UserMessage(FailureOutcome{Kind: FailureToolStall}))
	assert.Equal(t, msgLoopExceeded, UserMessage(FailureOutcome{Kind: FailureLoopExceeded}))
	assert.Equal(t, msgUnspecified, UserMessage(FailureOutcome{Kind: FailureUnspecified}))
}
