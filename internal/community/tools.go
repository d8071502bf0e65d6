package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuslink/campuslink/internal/chat"
	"github.com/campuslink/campuslink/internal/tool"
	"github.com/mitchellh/mapstructure"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 25
)

// decodeArgs decodes a tool-call argument map into a typed request and
// validates it.
func decodeArgs(args map[string]any, out any) error {
	if err := mapstructure.Decode(args, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if v, ok := out.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type searchRequest struct {
	Query string `mapstructure:"query"`
	Limit int    `mapstructure:"limit"`
}

func (r *searchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query must not be empty")
	}
	if r.Limit <= 0 || r.Limit > maxSearchLimit {
		r.Limit = defaultSearchLimit
	}
	return nil
}

type updateHeadlineRequest struct {
	Headline string `mapstructure:"headline"`
}

func (r *updateHeadlineRequest) Validate() error {
	if strings.TrimSpace(r.Headline) == "" {
		return errors.New("headline must not be empty")
	}
	return nil
}

type listRequest struct {
	Limit int `mapstructure:"limit"`
}

func (r *listRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > maxSearchLimit {
		r.Limit = defaultSearchLimit
	}
	return nil
}

func searchSchema(what string) *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"query": {Type: tool.TypeString, Description: "Keywords to search " + what + " for."},
			"limit": {Type: tool.TypeInteger, Description: "Maximum number of results (default 10, max 25)."},
		},
		Required: []string{"query"},
	}
}

// DataTools returns the backend data tools bound to the store.
func DataTools(store *Store) []chat.Definition {
	return []chat.Definition{
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "get_my_profile",
				Description: "Fetch the current user's profile: headline, bio, and course.",
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				profile, err := store.Profile(ctx, userID)
				if err != nil {
					if errors.Is(err, ErrNotFound) {
						return nil, errors.New("you have not set up a profile yet")
					}
					return nil, err
				}
				return profile, nil
			},
		},
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "update_my_headline",
				Description: "Set the current user's profile headline.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"headline": {Type: tool.TypeString, Description: "The new headline text."},
					},
					Required: []string{"headline"},
				},
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				var req updateHeadlineRequest
				if err := decodeArgs(args, &req); err != nil {
					return nil, err
				}
				if err := store.SetHeadline(ctx, userID, req.Headline); err != nil {
					return nil, err
				}
				return map[string]any{"updated": true, "headline": req.Headline}, nil
			},
		},
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "search_posts",
				Description: "Search community posts by keyword.",
				Parameters:  searchSchema("posts"),
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				var req searchRequest
				if err := decodeArgs(args, &req); err != nil {
					return nil, err
				}
				posts, err := store.SearchPosts(ctx, req.Query, req.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"posts": posts, "count": len(posts)}, nil
			},
		},
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "search_placements",
				Description: "Search placement and internship listings by company, role, or keyword.",
				Parameters:  searchSchema("placement listings"),
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				var req searchRequest
				if err := decodeArgs(args, &req); err != nil {
					return nil, err
				}
				placements, err := store.SearchPlacements(ctx, req.Query, req.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"placements": placements, "count": len(placements)}, nil
			},
		},
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "search_resources",
				Description: "Search shared study resources by title, subject, or keyword.",
				Parameters:  searchSchema("study resources"),
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				var req searchRequest
				if err := decodeArgs(args, &req); err != nil {
					return nil, err
				}
				resources, err := store.SearchResources(ctx, req.Query, req.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"resources": resources, "count": len(resources)}, nil
			},
		},
		{
			Kind: chat.KindData,
			Declaration: tool.Declaration{
				Name:        "list_classrooms",
				Description: "List classrooms the community offers.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"limit": {Type: tool.TypeInteger, Description: "Maximum number of classrooms (default 10, max 25)."},
					},
				},
			},
			Run: func(ctx context.Context, args map[string]any, userID string) (map[string]any, error) {
				var req listRequest
				if err := decodeArgs(args, &req); err != nil {
					return nil, err
				}
				classrooms, err := store.ListClassrooms(ctx, req.Limit)
				if err != nil {
					return nil, err
				}
				return map[string]any{"classrooms": classrooms, "count": len(classrooms)}, nil
			},
		},
	}
}

// UITools returns the UI-action tools. They never touch the store; the
// loop converts them straight into client directives.
func UITools() []chat.Definition {
	return []chat.Definition{
		{
			Kind: chat.KindUIAction,
			Declaration: tool.Declaration{
				Name:        "open_modal",
				Description: "Open a named client dialog with an arbitrary payload. Prefer a specific start_* tool when one fits.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"modalId": {Type: tool.TypeString, Description: "Identifier of the modal to open."},
						"data":    {Type: tool.TypeObject, Description: "Payload passed to the modal."},
					},
					Required: []string{"modalId"},
				},
			},
		},
		{
			Kind:    chat.KindUIAction,
			ModalID: "createProjectForm",
			Declaration: tool.Declaration{
				Name:        "start_project_creation",
				Description: "Use when the user wants to start a new project. Opens the project creation form.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"initialTitle": {Type: tool.TypeString, Description: "Suggested project title, if the user mentioned one."},
					},
				},
			},
		},
		{
			Kind:    chat.KindUIAction,
			ModalID: "createPostForm",
			Declaration: tool.Declaration{
				Name:        "start_post_creation",
				Description: "Use when the user wants to write a community post. Opens the post composer.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"initialTitle": {Type: tool.TypeString, Description: "Suggested post title, if the user mentioned one."},
					},
				},
			},
		},
		{
			Kind:    chat.KindUIAction,
			ModalID: "shareResourceForm",
			Declaration: tool.Declaration{
				Name:        "start_resource_share",
				Description: "Use when the user wants to share a study resource. Opens the resource sharing form.",
				Parameters: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"initialTitle": {Type: tool.TypeString, Description: "Suggested resource title, if the user mentioned one."},
						"initialUrl":   {Type: tool.TypeString, Description: "Resource link, if the user provided one."},
					},
				},
			},
		},
	}
}

// Tools returns the full tool catalogue for the assistant.
func Tools(store *Store) []chat.Definition {
	return append(DataTools(store), UITools()...)
}
