package clinicapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ListConversations returns one entry per counterpart the caller has messaged.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	data, err := c.do(ctx, request{op: "list_conversations", method: http.MethodGet, path: "/messages/conversations"})
	if err != nil {
		return nil, err
	}
	return decodeList[Conversation]("list_conversations", data)
}

// GetMessages returns the thread with userID.
func (c *Client) GetMessages(ctx context.Context, userID string) ([]Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("clinicapi: user id is required")
	}
	data, err := c.do(ctx, request{op: "get_messages", method: http.MethodGet, path: "/messages/" + pathEscape(userID)})
	if err != nil {
		return nil, err
	}
	return decodeList[Message]("get_messages", data)
}

// SendMessage posts a message to another user.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{op: "send_message", method: http.MethodPost, path: "/messages", body: req})
	if err != nil {
		return nil, err
	}
	msg, err := decodeEnvelope[Message]("send_message", data)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead marks the thread with userID as read.
func (c *Client) MarkRead(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("clinicapi: user id is required")
	}
	_, err := c.do(ctx, request{op: "mark_read", method: http.MethodPut, path: "/messages/" + pathEscape(userID) + "/read"})
	return err
}
