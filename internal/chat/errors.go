package chat

import "errors"

var (
	// ErrDuplicateTool is returned when registering a tool whose name
	// is already taken. Registration happens once at startup, so this
	// is fatal there, never reachable at request time.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrUnknownTool is returned when resolving a name no tool carries.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidDirective is returned when a UI-action tool call is
	// missing the fields needed to build a client directive.
	ErrInvalidDirective = errors.New("invalid ui directive")

	// ErrInvalidDefinition is returned for malformed tool definitions
	// at registration time.
	ErrInvalidDefinition = errors.New("invalid tool definition")
)
