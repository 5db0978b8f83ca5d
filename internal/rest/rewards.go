package rest

import (
	"context"

	"github.com/worldads/adwatch/internal/domain"
)

// CreateReward appends a ledger entry for a completed ad view.
func (c *Client) CreateReward(ctx context.Context, req domain.CreateRewardRequest) (*domain.Reward, error) {
	var reward domain.Reward
	if err := c.postJSON(ctx, "/api/v1/rewards", req, &reward); err != nil {
		return nil, err
	}
	return &reward, nil
}

// ListUserRewards returns every reward earned by a user.
func (c *Client) ListUserRewards(ctx context.Context, worldID string) ([]domain.Reward, error) {
	var rewards []domain.Reward
	if err := c.getJSON(ctx, "/api/v1/rewards/user/"+worldID, nil, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}
