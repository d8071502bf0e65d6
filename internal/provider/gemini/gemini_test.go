package gemini

import (
	"context"
	"testing"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/campuslink/campuslink/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerate_PassesModelAndCatalogue(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotConfig = config
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "ok"}}},
				}},
			}, nil
		},
	}
	p := New(client, "gemini-2.0-flash", WithSystemPrompt("You are the CampusLink assistant."))

	decls := []tool.Declaration{{Name: "get_my_profile", Description: "profile"}}
	reply, err := p.Generate(context.Background(),
		[]provider.Turn{provider.TextTurn(provider.RoleUser, "hi")}, decls)

	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, "gemini-2.0-flash", gotModel)
	require.NotNil(t, gotConfig)
	require.Len(t, gotConfig.Tools, 1)
	assert.Equal(t, "get_my_profile", gotConfig.Tools[0].FunctionDeclarations[0].Name)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.NotEmpty(t, gotConfig.SafetySettings)
}

func TestGenerate_MapsAPIError(t *testing.T) {
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, &genai.APIError{Code: 503, Message: "overloaded"}
		},
	}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(),
		[]provider.Turn{provider.TextTurn(provider.RoleUser, "hi")}, nil)

	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.ErrorCodeUnavailable, provErr.Code)
	assert.True(t, provider.IsRetryable(err))
}

func TestGenerate_NoToolsOmitsCatalogue(t *testing.T) {
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			assert.Empty(t, config.Tools)
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "hi"}}},
				}},
			}, nil
		},
	}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(),
		[]provider.Turn{provider.TextTurn(provider.RoleUser, "hi")}, nil)

	assert.NoError(t, err)
}
