package chat

import (
	"testing"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/stretchr/testify/assert"
)

func userTurn(text string) provider.Turn {
	return provider.TextTurn(provider.RoleUser, text)
}

func modelTextTurn(text string) provider.Turn {
	return provider.TextTurn(provider.RoleModel, text)
}

func TestNormalizeHistory_DropsLeadingModelTurns(t *testing.T) {
	history := []provider.Turn{
		modelTextTurn("hello, how can I help?"),
		modelTextTurn("are you still there?"),
		userTurn("what classrooms are there?"),
		modelTextTurn("here they are"),
	}

	got := NormalizeHistory(history, 0)

	assert.Len(t, got, 2)
	assert.Equal(t, provider.RoleUser, got[0].Role)
	assert.Equal(t, "what classrooms are there?", got[0].Text())
}

func TestNormalizeHistory_DropsMalformedTurns(t *testing.T) {
	history := []provider.Turn{
		{Role: "system", Parts: []provider.Part{{Text: "ignore me"}}},
		{Role: provider.RoleUser},
		userTurn("hi"),
		{Role: "assistant", Parts: []provider.Part{{Text: "wrong role"}}},
		modelTextTurn("hello"),
	}

	got := NormalizeHistory(history, 0)

	assert.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Text())
	assert.Equal(t, "hello", got[1].Text())
}

func TestNormalizeHistory_PreservesOrder(t *testing.T) {
	history := []provider.Turn{
		userTurn("one"),
		modelTextTurn("two"),
		userTurn("three"),
		modelTextTurn("four"),
	}

	got := NormalizeHistory(history, 0)

	texts := make([]string, 0, len(got))
	for _, turn := range got {
		texts = append(texts, turn.Text())
	}
	assert.Equal(t, []string{"one", "two", "three", "four"}, texts)
}

func TestNormalizeHistory_Idempotent(t *testing.T) {
	history := []provider.Turn{
		modelTextTurn("lead"),
		{Role: "bogus", Parts: []provider.Part{{Text: "x"}}},
		userTurn("hi"),
		modelTextTurn("hello"),
	}

	once := NormalizeHistory(history, 10)
	twice := NormalizeHistory(once, 10)

	assert.Equal(t, once, twice)
}

func TestNormalizeHistory_EmptyAndAllMalformed(t *testing.T) {
	assert.Empty(t, NormalizeHistory(nil, 0))
	assert.Empty(t, NormalizeHistory([]provider.Turn{
		{Role: "nope", Parts: []provider.Part{{Text: "a"}}},
		{Role: provider.RoleModel, Parts: []provider.Part{{Text: "b"}}},
	}, 0))
}

func TestNormalizeHistory_AppliesLimit(t *testing.T) {
	history := []provider.Turn{
		userTurn("old question"),
		modelTextTurn("old answer"),
		userTurn("newer question"),
		modelTextTurn("newer answer"),
	}

	got := NormalizeHistory(history, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, "newer question", got[0].Text())
	assert.Equal(t, provider.RoleUser, got[0].Role)
}

func TestNormalizeHistory_LimitKeepsLeadingUserInvariant(t *testing.T) {
	history := []provider.Turn{
		userTurn("q1"),
		modelTextTurn("a1"),
		userTurn("q2"),
		modelTextTurn("a2"),
		modelTextTurn("a2 continued"),
	}

	// Cutting to the last two turns leaves only model turns; they must
	// go too rather than replaying to the model starting on a model turn.
	got := NormalizeHistory(history, 2)

	assert.Empty(t, got)
}
