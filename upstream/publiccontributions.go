package upstream

import (
	"context"
	"net/http"
	"time"
)

// PublicContribution is a published, guest-visible contribution.
type PublicContribution struct {
	ID             string    `json:"id"`
	ContributionID string    `json:"contributionID"`
	Title          string    `json:"title"`
	FacultyID      string    `json:"facultyID"`
	PublishedAt    time.Time `json:"publishedAt"`
}

type PublicContributionInput struct {
	ContributionID string `json:"contributionID"`
}

func (c *Client) PublicContributions(ctx context.Context, token string) ([]PublicContribution, error) {
	var out []PublicContribution
	err := c.do(ctx, http.MethodGet, "/api/public-contributions", token, nil, &out)
	return out, err
}

func (c *Client) PublicContribution(ctx context.Context, token, id string) (PublicContribution, error) {
	var out PublicContribution
	err := c.do(ctx, http.MethodGet, "/api/public-contributions/"+id, token, nil, &out)
	return out, err
}

func (c *Client) PublishContribution(ctx context.Context, token string, in PublicContributionInput) (PublicContribution, error) {
	var out PublicContribution
	err := c.do(ctx, http.MethodPost, "/api/public-contributions", token, in, &out)
	return out, err
}

func (c *Client) UnpublishContribution(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/public-contributions/"+id, token, nil, nil)
}
