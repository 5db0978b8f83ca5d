package domain

import (
	"strings"
)

// CreativeKind is the resolved content kind of an advertisement creative.
// The server-reported creativeType string is ambiguous (free-form,
// case-varying) so it is normalized once at ingestion together with
// URL sniffing, and the renderer matches on this enum only.
type CreativeKind int

const (
	CreativeUnknown CreativeKind = iota
	CreativeImage
	CreativeHTML
	CreativeVideo
)

func (k CreativeKind) String() string {
	switch k {
	case CreativeImage:
		return "image"
	case CreativeHTML:
		return "html"
	case CreativeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// VideoSource distinguishes playable video surfaces so player
// adapters can drive them differently.
type VideoSource int

const (
	VideoSourceNone VideoSource = iota
	VideoSourceFile
	VideoSourceYouTube
	VideoSourceYouTubeShorts
)

// Advertisement is a creative unit shown in the swipeable feed.
type Advertisement struct {
	ID             string   `json:"_id"`
	AdsName        string   `json:"adsName"`
	Budget         float64  `json:"budget"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	TargetAudience string   `json:"targetAudience"`
	Locations      []string `json:"locations"`
	CreativeType   string   `json:"creativeType"`
	CreativeURL    string   `json:"creativeURL"`
	Description    string   `json:"description,omitempty"`

	// Resolved at ingestion, not sent by the server.
	Creative Creative `json:"-"`
}

// Creative is the normalized creative descriptor.
type Creative struct {
	Kind        CreativeKind
	VideoSource VideoSource
}

var (
	videoExts = []string{".mp4", ".webm", ".ogg", ".mov"}
	imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

func hasAnySuffix(s string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// ResolveCreative normalizes the server creativeType string plus the
// creative URL into a Creative. URL sniffing wins over the declared
// type when they disagree on video, matching how the feed historically
// treated youtube links typed as "image".
func ResolveCreative(creativeType, creativeURL string) Creative {
	typ := strings.ToLower(strings.TrimSpace(creativeType))
	url := strings.ToLower(creativeURL)

	isYouTube := strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
	isVideoURL := isYouTube || hasAnySuffix(url, videoExts)

	if isVideoURL || typ == "video" {
		c := Creative{Kind: CreativeVideo, VideoSource: VideoSourceFile}
		if isYouTube {
			c.VideoSource = VideoSourceYouTube
			if strings.Contains(url, "/shorts/") {
				c.VideoSource = VideoSourceYouTubeShorts
			}
		}
		return c
	}

	switch {
	case typ == "image" || hasAnySuffix(url, imageExts):
		return Creative{Kind: CreativeImage}
	case typ == "html":
		return Creative{Kind: CreativeHTML}
	default:
		return Creative{Kind: CreativeUnknown}
	}
}

// Resolve fills the ad's Creative field from its server fields.
func (a *Advertisement) Resolve() {
	a.Creative = ResolveCreative(a.CreativeType, a.CreativeURL)
}
