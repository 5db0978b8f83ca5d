package player

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/pkg/logger"
)

// Surface is the uniform capability interface over every playable ad
// creative. Exactly one surface is active at a time; the Controller
// owns that pointer.
type Surface interface {
	Play()
	Pause()
	Active() bool
}

// NewSurface builds the adapter for a resolved creative.
func NewSurface(adID string, creative domain.Creative) Surface {
	log := logger.WithComponent("player").With().Str("ad_id", adID).Logger()
	switch creative.Kind {
	case domain.CreativeVideo:
		return &videoSurface{log: log, source: creative.VideoSource}
	case domain.CreativeHTML, domain.CreativeImage:
		return &staticSurface{log: log, kind: creative.Kind}
	default:
		return &staticSurface{log: log, kind: domain.CreativeUnknown}
	}
}

// videoSurface drives a video creative (file embed or YouTube iframe,
// including Shorts, which need a reload instead of a play command).
type videoSurface struct {
	mu      sync.Mutex
	playing bool
	source  domain.VideoSource
	log     zerolog.Logger
}

func (v *videoSurface) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		return
	}
	v.playing = true
	switch v.source {
	case domain.VideoSourceYouTubeShorts:
		v.log.Debug().Msg("reloading shorts embed with autoplay")
	case domain.VideoSourceYouTube:
		v.log.Debug().Msg("sending playVideo to embed")
	default:
		v.log.Debug().Msg("playing video element")
	}
}

func (v *videoSurface) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.playing {
		return
	}
	v.playing = false
	v.log.Debug().Msg("paused video")
}

func (v *videoSurface) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// staticSurface covers image and HTML creatives: nothing plays, the
// feed's view timers decide completion, but the surface still tracks
// whether it is the visible one.
type staticSurface struct {
	mu      sync.Mutex
	visible bool
	kind    domain.CreativeKind
	log     zerolog.Logger
}

func (s *staticSurface) Play() {
	s.mu.Lock()
	s.visible = true
	s.mu.Unlock()
}

func (s *staticSurface) Pause() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
}

func (s *staticSurface) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Controller keeps the single "currently active" pointer across all
// registered surfaces.
type Controller struct {
	mu       sync.Mutex
	surfaces map[string]Surface
	activeID string
	log      zerolog.Logger
}

// NewController creates an empty controller.
func NewController() *Controller {
	return &Controller{
		surfaces: make(map[string]Surface),
		log:      logger.WithComponent("player"),
	}
}

// Register adds a surface for an ad.
func (c *Controller) Register(adID string, s Surface) {
	c.mu.Lock()
	c.surfaces[adID] = s
	c.mu.Unlock()
}

// Activate pauses every other surface and plays the target. Activating
// an unknown ad just pauses everything.
func (c *Controller) Activate(adID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range c.surfaces {
		if id != adID {
			s.Pause()
		}
	}
	c.activeID = ""
	if s, ok := c.surfaces[adID]; ok {
		s.Play()
		c.activeID = adID
	}
}

// PauseAll pauses everything but remembers the active pointer so
// Resume can pick it back up (drawer close).
func (c *Controller) PauseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.surfaces {
		s.Pause()
	}
}

// Resume re-plays the remembered active surface.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.surfaces[c.activeID]; ok {
		s.Play()
	}
}

// ActiveID returns the id of the active surface, or "".
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}
