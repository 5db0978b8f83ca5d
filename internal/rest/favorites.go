package rest

import (
	"context"

	"github.com/worldads/adwatch/internal/domain"
)

// CreateFavorite saves an advertisement for the user.
func (c *Client) CreateFavorite(ctx context.Context, req domain.CreateFavoriteRequest) (*domain.Favorite, error) {
	var fav domain.Favorite
	if err := c.postJSON(ctx, "/api/v1/favorites", req, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

// ListUserFavorites returns the user's saved advertisements.
func (c *Client) ListUserFavorites(ctx context.Context, worldID string) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if err := c.getJSON(ctx, "/api/v1/favorites/user/"+worldID, nil, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}
