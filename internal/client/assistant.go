package client

import (
	"context"
	"net/http"

	"github.com/martinsuchenak/campusctl/internal/model"
)

// AIStatus reports whether the assistant backend is configured
func (c *Client) AIStatus(ctx context.Context) (*model.AIStatus, error) {
	var out model.AIStatus
	if err := c.getJSON(ctx, "/ai/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat forwards a natural-language query to the assistant
func (c *Client) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	var out model.ChatResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/ai/chat", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CRUD forwards a natural-language create/update/delete instruction
func (c *Client) CRUD(ctx context.Context, req *model.CRUDRequest) (*model.CRUDResponse, error) {
	var out model.CRUDResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/ai/crud", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}
