package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListChats returns the signed-in user's chats.
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var resp listResponse[Chat]
	if err := c.do(ctx, http.MethodGet, "/me/chats", nil, &resp); err != nil {
		return nil, fmt.Errorf("chat listing failed: %w", err)
	}
	return resp.Value, nil
}

// SendChatMessage posts a plain-text message to a chat.
func (c *Client) SendChatMessage(ctx context.Context, chatID, content string) (*ChatMessage, error) {
	message := ChatMessage{Body: ItemBody{ContentType: "text", Content: content}}

	var created ChatMessage
	path := fmt.Sprintf("/chats/%s/messages", url.PathEscape(chatID))
	if err := c.do(ctx, http.MethodPost, path, message, &created); err != nil {
		return nil, fmt.Errorf("chat message failed: %w", err)
	}
	return &created, nil
}

// ListJoinedTeams returns the teams the signed-in user is a member of.
func (c *Client) ListJoinedTeams(ctx context.Context) ([]Team, error) {
	var resp listResponse[Team]
	if err := c.do(ctx, http.MethodGet, "/me/joinedTeams", nil, &resp); err != nil {
		return nil, fmt.Errorf("team listing failed: %w", err)
	}
	return resp.Value, nil
}

// ListChannels returns the channels of a team.
func (c *Client) ListChannels(ctx context.Context, teamID string) ([]Channel, error) {
	var resp listResponse[Channel]
	path := fmt.Sprintf("/teams/%s/channels", url.PathEscape(teamID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("channel listing failed: %w", err)
	}
	return resp.Value, nil
}

// SendChannelMessage posts a plain-text message to a team channel.
func (c *Client) SendChannelMessage(ctx context.Context, teamID, channelID, content string) (*ChatMessage, error) {
	message := ChatMessage{Body: ItemBody{ContentType: "text", Content: content}}

	var created ChatMessage
	path := fmt.Sprintf("/teams/%s/channels/%s/messages", url.PathEscape(teamID), url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodPost, path, message, &created); err != nil {
		return nil, fmt.Errorf("channel message failed: %w", err)
	}
	return &created, nil
}
