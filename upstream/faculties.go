package upstream

import (
	"context"
	"net/http"
)

type Faculty struct {
	ID          string `json:"id"`
	FacultyName string `json:"facultyName"`
}

type FacultyInput struct {
	FacultyName string `json:"facultyName"`
}

func (c *Client) Faculties(ctx context.Context, token string) ([]Faculty, error) {
	var out []Faculty
	err := c.do(ctx, http.MethodGet, "/api/faculties", token, nil, &out)
	return out, err
}

func (c *Client) Faculty(ctx context.Context, token, id string) (Faculty, error) {
	var out Faculty
	err := c.do(ctx, http.MethodGet, "/api/faculties/"+id, token, nil, &out)
	return out, err
}

func (c *Client) CreateFaculty(ctx context.Context, token string, in FacultyInput) (Faculty, error) {
	var out Faculty
	err := c.do(ctx, http.MethodPost, "/api/faculties", token, in, &out)
	return out, err
}

func (c *Client) UpdateFaculty(ctx context.Context, token, id string, in FacultyInput) (Faculty, error) {
	var out Faculty
	err := c.do(ctx, http.MethodPut, "/api/faculties/"+id, token, in, &out)
	return out, err
}

func (c *Client) DeleteFaculty(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/faculties/"+id, token, nil, nil)
}
