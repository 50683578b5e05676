package upstream

import "context"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the backend's credential exchange result.
type TokenResponse struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// AccountInfo describes the service account behind the configured token.
type AccountInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// Login exchanges service-account credentials for a bearer token and installs
// it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, "/auth/login", &loginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Me validates the current token against the backend. A 401 here means the
// token is expired or revoked.
func (c *Client) Me(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.get(ctx, "/auth/me", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// HasToken reports whether a bearer token is installed.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}
