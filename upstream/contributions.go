package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Contribution struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StudentID   string    `json:"studentID"`
	FacultyID   string    `json:"facultyID"`
	TopicID     string    `json:"topicID"`
	Status      string    `json:"status"`
	Feedback    string    `json:"feedback,omitempty"`
	Files       []string  `json:"files,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type ContributionStatusInput struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

func (c *Client) Contributions(ctx context.Context, token string) ([]Contribution, error) {
	var out []Contribution
	err := c.do(ctx, http.MethodGet, "/api/contributions", token, nil, &out)
	return out, err
}

func (c *Client) Contribution(ctx context.Context, token, id string) (Contribution, error) {
	var out Contribution
	err := c.do(ctx, http.MethodGet, "/api/contributions/"+id, token, nil, &out)
	return out, err
}

func (c *Client) ContributionsByTopic(ctx context.Context, token, topicID string) ([]Contribution, error) {
	var out []Contribution
	err := c.do(ctx, http.MethodGet, "/api/contributions/topic/"+topicID, token, nil, &out)
	return out, err
}

// StudentContributions lists a student's own submissions within a topic.
func (c *Client) StudentContributions(ctx context.Context, token, studentID, facultyID, topicID string) ([]Contribution, error) {
	var out []Contribution
	path := fmt.Sprintf("/api/contributions/%s/%s/%s", studentID, facultyID, topicID)
	err := c.do(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

// CreateContribution streams a browser multipart payload (metadata + files)
// through as-is; contentType must be the original multipart boundary header.
func (c *Client) CreateContribution(ctx context.Context, token, contentType string, body io.Reader) (Contribution, error) {
	var out Contribution
	err := c.doRaw(ctx, http.MethodPost, "/api/contributions", token, contentType, body, &out)
	return out, err
}

func (c *Client) UpdateContribution(ctx context.Context, token, id, contentType string, body io.Reader) (Contribution, error) {
	var out Contribution
	err := c.doRaw(ctx, http.MethodPut, "/api/contributions/"+id, token, contentType, body, &out)
	return out, err
}

func (c *Client) DeleteContribution(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/contributions/"+id, token, nil, nil)
}

// GradeContribution updates a contribution's moderation status and feedback.
func (c *Client) GradeContribution(ctx context.Context, token, id string, in ContributionStatusInput) (Contribution, error) {
	var out Contribution
	err := c.do(ctx, http.MethodPut, "/api/contribution-status/"+id, token, in, &out)
	return out, err
}
