package mockd

import (
	"time"

	"github.com/google/uuid"

	"github.com/worldads/adwatch/internal/domain"
)

// SampleAds returns a small mixed-creative inventory for local
// development.
func SampleAds() []domain.Advertisement {
	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0).Format(time.RFC3339)
	ads := []domain.Advertisement{
		{
			ID:           uuid.NewString(),
			AdsName:      "Trailside Energy Bars",
			Budget:       5000,
			StartDate:    start,
			EndDate:      now.AddDate(0, 2, 0).Format(time.RFC3339),
			CreativeType: "Video",
			CreativeURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Description:  "30 second spot",
		},
		{
			ID:           uuid.NewString(),
			AdsName:      "Nightowl Coffee",
			Budget:       2500,
			StartDate:    start,
			EndDate:      now.AddDate(0, 1, 0).Format(time.RFC3339),
			CreativeType: "Image",
			CreativeURL:  "https://cdn.local/creatives/nightowl.png",
			Description:  "static banner",
		},
		{
			ID:           uuid.NewString(),
			AdsName:      "Meridian Wallet",
			Budget:       8000,
			StartDate:    now.Format(time.RFC3339),
			EndDate:      now.AddDate(0, 3, 0).Format(time.RFC3339),
			CreativeType: "HTML",
			CreativeURL:  "https://ads.local/meridian/interactive",
			Description:  "interactive playable",
		},
	}
	for i := range ads {
		ads[i].Resolve()
	}
	return ads
}
