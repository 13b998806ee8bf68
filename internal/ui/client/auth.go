package client

import (
	"context"
	"net/http"

	"github.com/constella-app/constella-web/internal/ui/types"
)

// Login authenticates a user with the Constella API
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	raw, err := c.Request(ctx, "/auth/login", &RequestOptions{
		Method: http.MethodPost,
		JSON: types.LoginRequest{
			Email:    email,
			Password: password,
		},
	})
	if err != nil {
		return nil, err
	}

	var loginResponse types.LoginResponse
	if err := decodeInto(raw, &loginResponse, "decoding login response"); err != nil {
		return nil, err
	}

	if loginResponse.Email == "" {
		loginResponse.Email = email
	}
	return &loginResponse, nil
}

// Signup creates a new account using the Constella API
func (c *Client) Signup(ctx context.Context, signupRequest *types.SignupRequest) (*types.SignupResponse, error) {
	raw, err := c.Request(ctx, "/auth/signup", &RequestOptions{
		Method: http.MethodPost,
		JSON:   signupRequest,
	})
	if err != nil {
		return nil, err
	}

	var signupResponse types.SignupResponse
	if err := decodeInto(raw, &signupResponse, "decoding signup response"); err != nil {
		return nil, err
	}

	return &signupResponse, nil
}
