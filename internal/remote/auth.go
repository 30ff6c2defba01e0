package remote

import (
	"context"
	"errors"
	"net/http"

	"etalase/internal/models"
)

// Login sends credentials. The session cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/login", body, nil)
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser returns the identity of the active session. It returns nil and no
// error when the API reports that there is no session.
func (c *Client) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var me models.Identity
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &me)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, nil
		}
		return nil, err
	}
	if me.Username == "" || !me.Role.Valid() {
		return nil, nil
	}
	return &me, nil
}
