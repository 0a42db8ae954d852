package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

// Login exchanges credentials for a bearer token. A 401 here is a bad
// password, not an expired session, so no teardown happens.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (models.AccessToken, error) {
	form := url.Values{}
	form.Set("username", req.Username)
	form.Set("password", req.Password)

	var token models.AccessToken
	err := c.do(ctx, call{
		operation:   "auth.token",
		method:      http.MethodPost,
		path:        "/auth/token",
		raw:         strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		public:      true,
	}, &token)
	if err != nil {
		return models.AccessToken{}, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return models.AccessToken{}, fmt.Errorf("backend auth.token returned no access token")
	}
	return token, nil
}

// Register creates a backend account.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, call{
		operation: "auth.register",
		method:    http.MethodPost,
		path:      "/auth/",
		body:      req,
		public:    true,
	}, nil)
}
