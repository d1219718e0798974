package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Message, error)

	// Render selects the template for (event, channel), falling back to
	// the organization-level template for the channel, and interpolates it
	// with the supplied context. Missing templates and unresolved variables
	// are errors, never silently dropped.
	Render(ctx context.Context, eventID, orgID, channelID snowflake.ID, context map[string]any) (*Rendered, error)

	// RenderPreview renders one message by id with a caller-supplied
	// context, without dispatching anything.
	RenderPreview(ctx context.Context, id string, context map[string]any) (*Rendered, error)
}

type CreateRequest struct {
	OrgID       string         `json:"org_id"`
	ChannelID   string         `json:"channel_id"`
	EventID     string         `json:"event_id,omitempty"`
	Name        string         `json:"name"`
	Subject     string         `json:"subject"`
	Content     string         `json:"content"`
	HTMLContent string         `json:"html_content"`
	Context     map[string]any `json:"context"`
}
