package gemini

import (
	"errors"
	"fmt"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/campuslink/campuslink/internal/tool"
	"google.golang.org/genai"
)

// toContents converts a turn sequence to Gemini Content format.
func toContents(turns []provider.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		if c := turnToContent(t); c != nil {
			contents = append(contents, c)
		}
	}
	return contents
}

// turnToContent converts a single turn. Empty turns map to nil.
func turnToContent(t provider.Turn) *genai.Content {
	role := "user"
	if t.Role == provider.RoleModel {
		role = "model"
	}

	parts := make([]*genai.Part, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch {
		case p.ToolCall != nil:
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: p.ToolCall.Name,
					Args: p.ToolCall.Args,
				},
			})
		case p.ToolResult != nil:
			response := p.ToolResult.Payload
			if p.ToolResult.Err != "" {
				response = map[string]any{"error": p.ToolResult.Err}
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     p.ToolResult.Name,
					Response: response,
				},
			})
		case p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}

	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: role, Parts: parts}
}

// generateConfig builds the per-request Gemini config.
func generateConfig(systemPrompt string, tools []tool.Declaration) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)},
		}
	}
	if len(tools) > 0 {
		config.Tools = toGenaiTools(tools)
	}
	return config
}

// defaultSafetySettings blocks only high-probability harmful content,
// leaving the rest to the platform's own moderation layer.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	}
}

// toGenaiTools converts tool declarations to the Gemini tool format.
func toGenaiTools(decls []tool.Declaration) []*genai.Tool {
	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGenaiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}
	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGenaiSchema converts the internal schema to a Gemini Schema.
func toGenaiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	schema := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
	}
	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGenaiSchema(prop)
		}
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}
	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if s.Items != nil {
		schema.Items = toGenaiSchema(s.Items)
	}
	return schema
}

// toGenaiType converts the internal type to a Gemini Type.
func toGenaiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromResponse converts a Gemini response to a provider reply.
// Finish conditions that yield no usable output are reported through
// the reply's stop reason, not as errors, so the loop can surface a
// user-safe message.
func fromResponse(resp *genai.GenerateContentResponse) *provider.Reply {
	if len(resp.Candidates) == 0 {
		return &provider.Reply{Stop: provider.StopUnspecified}
	}

	candidate := resp.Candidates[0]
	reply := &provider.Reply{Stop: provider.StopNormal}

	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		reply.Stop = provider.StopSafety
	case genai.FinishReasonMaxTokens:
		reply.Stop = provider.StopTruncated
	case genai.FinishReasonMalformedFunctionCall:
		reply.Stop = provider.StopToolStall
	case genai.FinishReasonStop, genai.FinishReasonUnspecified:
		// Normal completion.
	default:
		reply.Stop = provider.StopUnspecified
	}

	if candidate.Content == nil {
		return reply
	}

	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, provider.ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		reply.Text += part.Text
	}

	return reply
}

// mapAPIError maps Gemini API errors to provider errors.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &provider.Error{
				Code:       provider.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 429:
			return &provider.Error{
				Code:       provider.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
			}
		case 400:
			return &provider.Error{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &provider.Error{
				Code:       provider.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	return &provider.Error{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
