package upstream

import (
	"context"
	"io"
	"net/http"

	"github.com/unipress/portal/core/session"
)

type Role struct {
	ID   session.RoleID `json:"id"`
	Name string         `json:"name"`
}

func (c *Client) Users(ctx context.Context, token string) ([]session.Identity, error) {
	var out []session.Identity
	err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &out)
	return out, err
}

// CreateUser forwards the admin's multipart payload (profile fields + avatar).
func (c *Client) CreateUser(ctx context.Context, token, contentType string, body io.Reader) (session.Identity, error) {
	var out session.Identity
	err := c.doRaw(ctx, http.MethodPost, "/api/users", token, contentType, body, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, token, id, contentType string, body io.Reader) (session.Identity, error) {
	var out session.Identity
	err := c.doRaw(ctx, http.MethodPut, "/api/users/"+id, token, contentType, body, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+id, token, nil, nil)
}

func (c *Client) Roles(ctx context.Context, token string) ([]Role, error) {
	var out []Role
	err := c.do(ctx, http.MethodGet, "/api/roles", token, nil, &out)
	return out, err
}
