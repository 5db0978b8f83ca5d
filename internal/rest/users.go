package rest

import (
	"context"
	"io"

	"github.com/worldads/adwatch/internal/domain"
)

// CreateUser registers a wallet identity.
func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	var user domain.User
	if err := c.postJSON(ctx, "/api/v1/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges the wallet identity for a session token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.postJSON(ctx, "/api/v1/users/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUserByWorldID fetches a user by their stable worldId key.
func (c *Client) GetUserByWorldID(ctx context.Context, worldID string) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, "/api/v1/users/world/"+worldID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadAvatar uploads a user avatar as multipart form data.
func (c *Client) UploadAvatar(ctx context.Context, userID, filename string, media io.Reader) (*domain.User, error) {
	var user domain.User
	err := c.postMultipart(ctx, "/api/v1/users/"+userID+"/avatar/upload",
		nil, "avatar", filename, media, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
