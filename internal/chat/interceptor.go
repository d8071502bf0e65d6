package chat

import (
	"fmt"

	"github.com/campuslink/campuslink/internal/provider"
	"github.com/mitchellh/mapstructure"
)

// UIActionDirective asks the client to open a modal form. It is a
// terminal output: when one is produced the loop stops, no tool result
// is fed back to the model, and any remaining tool calls in the same
// model turn are discarded.
type UIActionDirective struct {
	ModalID string
	Data    map[string]any
}

// openModalArgs is the argument shape of the generic open-modal tool.
type openModalArgs struct {
	ModalID string         `mapstructure:"modalId"`
	Data    map[string]any `mapstructure:"data"`
}

// buildDirective synthesizes a directive from a UI-action tool call.
//
// Semantic tools (non-empty def.ModalID) translate to their fixed modal
// with the call's own arguments nested as the form's initial data; the
// model expresses intent without knowing the UI's modal identifiers.
// The generic tool takes the modal id from its arguments and fails with
// ErrInvalidDirective if it is missing or not a string.
func buildDirective(def Definition, call provider.ToolCall) (UIActionDirective, error) {
	if def.ModalID != "" {
		data := map[string]any{}
		if len(call.Args) > 0 {
			data["initialData"] = call.Args
		}
		return UIActionDirective{ModalID: def.ModalID, Data: data}, nil
	}

	var args openModalArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &args,
		ErrorUnused: false,
	})
	if err != nil {
		return UIActionDirective{}, fmt.Errorf("building decoder: %w", err)
	}
	if err := decoder.Decode(call.Args); err != nil {
		return UIActionDirective{}, fmt.Errorf("%w: %v", ErrInvalidDirective, err)
	}
	if args.ModalID == "" {
		return UIActionDirective{}, fmt.Errorf("%w: modalId is required", ErrInvalidDirective)
	}

	data := args.Data
	if data == nil {
		data = map[string]any{}
	}
	return UIActionDirective{ModalID: args.ModalID, Data: data}, nil
}
