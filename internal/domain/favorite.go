package domain

import "time"

// Favorite marks an advertisement a user saved.
type Favorite struct {
	ID              string    `json:"_id"`
	WorldID         string    `json:"worldId"`
	AdvertisementID string    `json:"advertisementId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateFavoriteRequest is the save-favorite payload.
type CreateFavoriteRequest struct {
	WorldID         string `json:"worldId"`
	AdvertisementID string `json:"advertisementId"`
}
