package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/campuslink/campuslink/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutor(t *testing.T, defs ...Definition) *Executor {
	t.Helper()
	r, err := NewRegistry(defs...)
	require.NoError(t, err)
	return NewExecutor(r, time.Second, nil)
}

func TestExecuteAll_Empty(t *testing.T) {
	e := testExecutor(t, dataDef("anything"))

	assert.Empty(t, e.ExecuteAll(context.Background(), nil, "u1"))
}

func TestExecuteAll_SingleCall(t *testing.T) {
	e := testExecutor(t, Definition{
		Kind:        KindData,
		Declaration: tool.Declaration{Name: "echo"},
		Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
			return map[string]any{"user": userID, "got": args["v"]}, nil
		},
	})

	results := e.ExecuteAll(context.Background(),
		[]provider.ToolCall{{Name: "echo", Args: map[string]any{"v": "hi"}}}, "u1")

	require.Len(t, results, 1)
	assert.Equal(t, "echo", results[0].Name)
	assert.Empty(t, results[0].Err)
	assert.Equal(t, map[string]any{"user": "u1", "got": "hi"}, results[0].Payload)
}

func TestExecuteAll_IsolatesFailures(t *testing.T) {
	e := testExecutor(t,
		Definition{
			Kind:        KindData,
			Declaration: tool.Declaration{Name: "good"},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				return map[string]any{"ok": true}, nil
			},
		},
		Definition{
			Kind:        KindData,
			Declaration: tool.Declaration{Name: "bad"},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				return nil, errors.New("backend exploded")
			},
		},
	)

	results := e.ExecuteAll(context.Background(), []provider.ToolCall{
		{Name: "bad"},
		{Name: "good"},
	}, "u1")

	require.Len(t, results, 2)
	assert.Equal(t, "bad", results[0].Name)
	assert.Equal(t, "backend exploded", results[0].Err)
	assert.Equal(t, "good", results[1].Name)
	assert.Empty(t, results[1].Err)
	assert.Equal(t, map[string]any{"ok": true}, results[1].Payload)
}

func TestExecuteAll_UnknownTool(t *testing.T) {
	e := testExecutor(t, dataDef("known"))

	results := e.ExecuteAll(context.Background(),
		[]provider.ToolCall{{Name: "mystery"}}, "u1")

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Err, "mystery")
}

func TestExecuteAll_UIActionToolIsNotExecutable(t *testing.T) {
	e := testExecutor(t, Definition{
		Kind:        KindUIAction,
		ModalID:     "someForm",
		Declaration: tool.Declaration{Name: "start_something"},
	})

	results := e.ExecuteAll(context.Background(),
		[]provider.ToolCall{{Name: "start_something"}}, "u1")

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Err, "not executable")
}

func TestExecuteAll_PerCallTimeout(t *testing.T) {
	r, err := NewRegistry(
		Definition{
			Kind:        KindData,
			Declaration: tool.Declaration{Name: "slow"},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return map[string]any{}, nil
				}
			},
		},
		Definition{
			Kind:        KindData,
			Declaration: tool.Declaration{Name: "fast"},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				return map[string]any{"fast": true}, nil
			},
		},
	)
	require.NoError(t, err)
	e := NewExecutor(r, 50*time.Millisecond, nil)

	start := time.Now()
	results := e.ExecuteAll(context.Background(), []provider.ToolCall{
		{Name: "slow"},
		{Name: "fast"},
	}, "u1")

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Err)
	assert.Empty(t, results[1].Err)
}

func TestExecuteAll_RecoversPanic(t *testing.T) {
	e := testExecutor(t, Definition{
		Kind:        KindData,
		Declaration: tool.Declaration{Name: "bomb"},
		Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
			panic("boom")
		},
	})

	results := e.ExecuteAll(context.Background(),
		[]provider.ToolCall{{Name: "bomb"}}, "u1")

	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Err)
}
