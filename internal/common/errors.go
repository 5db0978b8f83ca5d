package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")

	// Comment errors
	ErrCommentNotFound       = errors.New("comment not found")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrEmptyContent          = errors.New("empty content")

	// Reaction errors
	ErrReactionInFlight = errors.New("reaction request already in flight")
	ErrReactionNotFound = errors.New("reaction not found")

	// Session errors
	ErrSessionClosed = errors.New("drawer session closed")

	// Reward errors
	ErrRewardAlreadyGranted = errors.New("reward already granted")
)
