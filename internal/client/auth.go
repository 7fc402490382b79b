package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// Login exchanges credentials for a token and stores it in the session
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	payload := map[string]string{"email": email, "password": password}

	var out model.LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", payload, &out, true); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	if err := c.session.Set(ctx, out.Token, &out.User); err != nil {
		return nil, err
	}

	log.Info("Signed in", "email", out.User.Email, "role", out.User.Role)
	return &out.User, nil
}

// Verify asks the backend whether the held token is still valid. An invalid
// token is cleared from the session.
func (c *Client) Verify(ctx context.Context) (*model.User, error) {
	var out model.VerifyResponse
	if err := c.getJSON(ctx, "/auth/verify", nil, &out); err != nil {
		return nil, err
	}
	if !out.Valid || out.User == nil {
		log.Warn("Stored token is no longer valid")
		if err := c.session.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, ErrUnauthorized
	}
	if err := c.session.SetUser(ctx, out.User); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout tells the backend the token is done with and clears it locally.
// The local token is cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	var callErr error
	if c.session.Authenticated() {
		callErr = c.sendJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, false)
		if callErr != nil && !errors.Is(callErr, ErrUnauthorized) {
			log.Warn("Logout request failed", "error", callErr)
		}
	}
	if err := c.session.Clear(ctx); err != nil {
		return err
	}
	if errors.Is(callErr, ErrUnauthorized) {
		return nil
	}
	return callErr
}
