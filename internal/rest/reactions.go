package rest

import (
	"context"
	"errors"
	"net/url"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
)

// CreateReaction sets a Like/Dislike on a comment or reply.
func (c *Client) CreateReaction(ctx context.Context, reaction domain.Reaction) error {
	return c.postJSON(ctx, "/api/v1/comments/reaction", reaction, nil)
}

// DeleteReaction removes the caller's reaction from a target. The
// backend keys reactions by (target, reactor), so deletion is by the
// composite target key rather than a reaction id.
func (c *Client) DeleteReaction(ctx context.Context, targetID string, targetType domain.TargetType, worldID string) error {
	q := url.Values{}
	q.Set("targetId", targetID)
	q.Set("targetType", string(targetType))
	q.Set("worldId", worldID)
	return c.deleteJSON(ctx, "/api/v1/comments/reaction", q, nil)
}

// GetUserReaction returns the caller's reaction on a target, or nil
// when none exists.
func (c *Client) GetUserReaction(ctx context.Context, targetID string, targetType domain.TargetType, worldID string) (*domain.Reaction, error) {
	q := url.Values{}
	q.Set("targetId", targetID)
	q.Set("targetType", string(targetType))
	q.Set("worldId", worldID)

	var reaction domain.Reaction
	err := c.getJSON(ctx, "/api/v1/comments/reaction/user", q, &reaction)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// ListUserReactionsForAd returns every reaction the user has placed on
// targets under one advertisement, used to seed userReaction fields
// when the drawer opens.
func (c *Client) ListUserReactionsForAd(ctx context.Context, advertisementID, worldID string) ([]domain.Reaction, error) {
	var reactions []domain.Reaction
	err := c.getJSON(ctx, "/api/v1/comments/reactions/advertisement/"+advertisementID+"/user/"+worldID, nil, &reactions)
	if err != nil {
		return nil, err
	}
	return reactions, nil
}
