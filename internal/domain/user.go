package domain

import "time"

// User is the wallet-backed identity. WorldID is the stable
// cross-session key used throughout the comment/reaction APIs.
type User struct {
	ID            string    `json:"_id"`
	WorldID       string    `json:"worldId"`
	Nickname      string    `json:"nickname,omitempty"`
	WalletAddress string    `json:"walletAddress"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LoginRequest is the wallet login payload.
type LoginRequest struct {
	WorldID       string `json:"worldId"`
	WalletAddress string `json:"walletAddress"`
}

// LoginResponse carries the user plus a bearer token for subsequent
// requests.
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	WorldID       string `json:"worldId"`
	Nickname      string `json:"nickname,omitempty"`
	WalletAddress string `json:"walletAddress"`
}
