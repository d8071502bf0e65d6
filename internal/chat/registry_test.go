package chat

import (
	"context"
	"testing"

	"github.com/campuslink/campuslink/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRun(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
	return map[string]any{}, nil
}

func dataDef(name string) Definition {
	return Definition{
		Kind:        KindData,
		Declaration: tool.Declaration{Name: name, Description: name},
		Run:         noopRun,
	}
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry(dataDef("search_posts"), dataDef("search_posts"))

	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestNewRegistry_RejectsInvalidDefinitions(t *testing.T) {
	_, err := NewRegistry(Definition{Kind: KindData, Run: noopRun})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewRegistry(Definition{
		Kind:        KindData,
		Declaration: tool.Declaration{Name: "broken"},
	})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestRegistry_Resolve(t *testing.T) {
	r, err := NewRegistry(dataDef("get_my_profile"))
	require.NoError(t, err)

	def, err := r.Resolve("get_my_profile")
	assert.NoError(t, err)
	assert.Equal(t, "get_my_profile", def.Declaration.Name)

	_, err = r.Resolve("does_not_exist")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_DeclarationsSorted(t *testing.T) {
	r, err := NewRegistry(dataDef("zebra"), dataDef("alpha"), dataDef("middle"))
	require.NoError(t, err)

	decls := r.Declarations()

	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "middle", "zebra"}, names)
}
