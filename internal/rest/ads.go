package rest

import (
	"context"

	"github.com/worldads/adwatch/internal/domain"
)

// ListAdvertisements fetches the ad feed. Creative kinds are resolved
// once here so downstream renderers match on the enum only.
func (c *Client) ListAdvertisements(ctx context.Context) ([]domain.Advertisement, error) {
	var ads []domain.Advertisement
	if err := c.getJSON(ctx, "/api/v1/advertisements", nil, &ads); err != nil {
		return nil, err
	}
	for i := range ads {
		ads[i].Resolve()
	}
	return ads, nil
}
