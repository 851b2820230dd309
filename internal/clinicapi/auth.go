package clinicapi

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for a backend token and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "/auth/login", body: req})
	if err != nil {
		return nil, err
	}
	return decodeAuth("login", data)
}

// Register creates an account. Doctor accounts stay pending until an admin approves
// them, in which case the backend returns no token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{op: "register", method: http.MethodPost, path: "/auth/register", body: req})
	if err != nil {
		return nil, err
	}
	return decodeAuth("register", data)
}

// Profile returns the user the client's token belongs to.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	data, err := c.do(ctx, request{op: "profile", method: http.MethodGet, path: "/auth/profile"})
	if err != nil {
		return nil, err
	}
	user, err := decodeEnvelope[User]("profile", data)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		nested, err := decodeEnvelope[struct {
			User User `json:"user"`
		}]("profile", data)
		if err != nil {
			return nil, err
		}
		user = nested.User
	}
	if user.ID == "" {
		return nil, &ParseError{Op: "profile", Err: errors.New("missing user id")}
	}
	return &user, nil
}

func decodeAuth(op string, data []byte) (*AuthResponse, error) {
	resp, err := decodeEnvelope[AuthResponse](op, data)
	if err != nil {
		return nil, err
	}
	if resp.User.ID == "" {
		return nil, &ParseError{Op: op, Err: errors.New("missing user")}
	}
	return &resp, nil
}
