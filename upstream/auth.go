package upstream

import (
	"context"
	"net/http"

	"github.com/unipress/portal/core/session"
)

type (
	Credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// LoginResult is the authentication exchange payload: the Identity plus a
	// signed bearer credential carrying at least an `exp` claim.
	LoginResult struct {
		Token string           `json:"token"`
		User  session.Identity `json:"user"`
	}

	NewAccount struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FacultyID string `json:"facultyID,omitempty"`
	}
)

func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &res)
	return res, err
}

func (c *Client) Register(ctx context.Context, acc NewAccount) (session.Identity, error) {
	var usr session.Identity
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", acc, &usr)
	return usr, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", "", body, nil)
}

// Me returns the fresh profile behind the given credential.
func (c *Client) Me(ctx context.Context, token string) (session.Identity, error) {
	var usr session.Identity
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &usr)
	return usr, err
}
