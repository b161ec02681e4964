package upstream

import (
	"context"
	"net/http"
	"time"
)

type Topic struct {
	ID          string    `json:"id"`
	TopicName   string    `json:"topicName"`
	Description string    `json:"description,omitempty"`
	FacultyID   string    `json:"facultyID"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type TopicInput struct {
	TopicName   string    `json:"topicName"`
	Description string    `json:"description,omitempty"`
	FacultyID   string    `json:"facultyID"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

func (c *Client) Topics(ctx context.Context, token string) ([]Topic, error) {
	var out []Topic
	err := c.do(ctx, http.MethodGet, "/api/topics", token, nil, &out)
	return out, err
}

func (c *Client) Topic(ctx context.Context, token, id string) (Topic, error) {
	var out Topic
	err := c.do(ctx, http.MethodGet, "/api/topics/"+id, token, nil, &out)
	return out, err
}

func (c *Client) TopicsByFaculty(ctx context.Context, token, facultyID string) ([]Topic, error) {
	var out []Topic
	err := c.do(ctx, http.MethodGet, "/api/topics/faculty/"+facultyID, token, nil, &out)
	return out, err
}

func (c *Client) CreateTopic(ctx context.Context, token string, in TopicInput) (Topic, error) {
	var out Topic
	err := c.do(ctx, http.MethodPost, "/api/topics", token, in, &out)
	return out, err
}

func (c *Client) UpdateTopic(ctx context.Context, token, id string, in TopicInput) (Topic, error) {
	var out Topic
	err := c.do(ctx, http.MethodPut, "/api/topics/"+id, token, in, &out)
	return out, err
}

func (c *Client) DeleteTopic(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/topics/"+id, token, nil, nil)
}
