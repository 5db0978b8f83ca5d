package domain

import "time"

// Reward token amounts per completed creative kind.
const (
	RewardAmountVideo = 10
	RewardAmountHTML  = 5
	RewardAmountImage = 5
)

// RewardAmountFor returns the token amount for a completed creative.
// Unknown creatives earn nothing.
func RewardAmountFor(kind CreativeKind) int {
	switch kind {
	case CreativeVideo:
		return RewardAmountVideo
	case CreativeHTML:
		return RewardAmountHTML
	case CreativeImage:
		return RewardAmountImage
	default:
		return 0
	}
}

// Reward is one ledger entry for a completed ad view.
type Reward struct {
	ID              string    `json:"_id"`
	WorldID         string    `json:"worldId"`
	AdvertisementID string    `json:"advertisementId"`
	Amount          int       `json:"amount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateRewardRequest is the reward grant payload.
type CreateRewardRequest struct {
	WorldID         string `json:"worldId"`
	AdvertisementID string `json:"advertisementId"`
	Amount          int    `json:"amount"`
}
