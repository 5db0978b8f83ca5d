package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/internal/drawer"
	"github.com/worldads/adwatch/internal/player"
	"github.com/worldads/adwatch/pkg/logger"
)

// API is the slice of the REST client the feed needs.
type API interface {
	ListAdvertisements(ctx context.Context) ([]domain.Advertisement, error)
	CreateReward(ctx context.Context, req domain.CreateRewardRequest) (*domain.Reward, error)
}

// Identity supplies the viewer identity for reward grants.
type Identity interface {
	RequireWorldID() (string, error)
}

// Options tune the feed. Zero values fall back to the production
// view-time thresholds.
type Options struct {
	HTMLCompleteAfter  time.Duration
	ImageCompleteAfter time.Duration
	DrawerOptions      drawer.Options
	// OnReward fires after a reward is granted, for the celebration
	// animation layer.
	OnReward func(adID string, amount int)
}

const (
	defaultHTMLCompleteAfter  = 10 * time.Second
	defaultImageCompleteAfter = 5 * time.Second
)

// Feed orchestrates the vertically swipeable ad list: which slide is
// active, when an ad counts as watched, reward grants, and the comment
// drawer lifecycle.
type Feed struct {
	api       API
	drawerAPI drawer.API
	transport drawer.Transport
	identity  Identity
	players   *player.Controller

	htmlAfter  time.Duration
	imageAfter time.Duration
	drawerOpts drawer.Options
	onReward   func(adID string, amount int)

	mu        sync.Mutex
	ads       []domain.Advertisement
	active    int
	completed map[string]bool
	rewarded  map[string]bool
	timer     *time.Timer
	drawer    *drawer.Session

	log zerolog.Logger
}

// New creates an empty feed; Load populates it.
func New(api API, drawerAPI drawer.API, tr drawer.Transport, identity Identity, opts Options) *Feed {
	if opts.HTMLCompleteAfter <= 0 {
		opts.HTMLCompleteAfter = defaultHTMLCompleteAfter
	}
	if opts.ImageCompleteAfter <= 0 {
		opts.ImageCompleteAfter = defaultImageCompleteAfter
	}
	return &Feed{
		api:        api,
		drawerAPI:  drawerAPI,
		transport:  tr,
		identity:   identity,
		players:    player.NewController(),
		htmlAfter:  opts.HTMLCompleteAfter,
		imageAfter: opts.ImageCompleteAfter,
		drawerOpts: opts.DrawerOptions,
		onReward:   opts.OnReward,
		completed:  make(map[string]bool),
		rewarded:   make(map[string]bool),
		log:        logger.WithComponent("feed"),
	}
}

// Load fetches the ad list, registers a playable surface per ad and
// activates the first slide. A failed fetch degrades to an empty feed.
func (f *Feed) Load(ctx context.Context) error {
	ads, err := f.api.ListAdvertisements(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("ad fetch failed, feed empty")
		ads = nil
	}

	f.mu.Lock()
	f.ads = ads
	f.active = 0
	f.mu.Unlock()

	for _, ad := range ads {
		f.players.Register(ad.ID, player.NewSurface(ad.ID, ad.Creative))
	}
	if len(ads) > 0 {
		f.Select(0)
	}
	return nil
}

// Ads returns a snapshot of the loaded feed.
func (f *Feed) Ads() []domain.Advertisement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Advertisement, len(f.ads))
	copy(out, f.ads)
	return out
}

// Active returns the currently shown ad, or nil for an empty feed.
func (f *Feed) Active() *domain.Advertisement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ads) == 0 {
		return nil
	}
	ad := f.ads[f.active]
	return &ad
}

// Select makes slide index the visible one: pause every other surface,
// play this one, and arm the view-time completion timer for static
// creatives. Video completion rides on the player end event instead.
func (f *Feed) Select(index int) {
	f.mu.Lock()
	if index < 0 || index >= len(f.ads) {
		f.mu.Unlock()
		return
	}
	f.active = index
	ad := f.ads[index]
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	switch ad.Creative.Kind {
	case domain.CreativeHTML:
		f.timer = time.AfterFunc(f.htmlAfter, func() { f.Complete(ad.ID) })
	case domain.CreativeImage:
		f.timer = time.AfterFunc(f.imageAfter, func() { f.Complete(ad.ID) })
	}
	f.mu.Unlock()

	f.players.Activate(ad.ID)
}

// Next advances one slide.
func (f *Feed) Next() {
	f.mu.Lock()
	index := f.active + 1
	f.mu.Unlock()
	f.Select(index)
}

// Prev goes back one slide.
func (f *Feed) Prev() {
	f.mu.Lock()
	index := f.active - 1
	f.mu.Unlock()
	f.Select(index)
}

// Complete marks an ad as watched, once, and grants its reward. The
// video player calls this on its end event; static creatives arrive
// here from the view timers.
func (f *Feed) Complete(adID string) {
	f.mu.Lock()
	if f.completed[adID] {
		f.mu.Unlock()
		return
	}
	var ad *domain.Advertisement
	for i := range f.ads {
		if f.ads[i].ID == adID {
			ad = &f.ads[i]
			break
		}
	}
	if ad == nil {
		f.mu.Unlock()
		return
	}
	f.completed[adID] = true
	f.mu.Unlock()

	f.log.Info().Str("ad_id", adID).Msg("ad completed")
	f.grantReward(*ad)
}

// Completed reports whether an ad has been watched this session.
func (f *Feed) Completed(adID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed[adID]
}

func (f *Feed) grantReward(ad domain.Advertisement) {
	amount := domain.RewardAmountFor(ad.Creative.Kind)
	if amount == 0 {
		return
	}
	worldID, err := f.identity.RequireWorldID()
	if err != nil {
		f.log.Debug().Str("ad_id", ad.ID).Msg("anonymous view, no reward")
		return
	}

	f.mu.Lock()
	if f.rewarded[ad.ID] {
		f.mu.Unlock()
		return
	}
	f.rewarded[ad.ID] = true
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := f.api.CreateReward(ctx, domain.CreateRewardRequest{
		WorldID:         worldID,
		AdvertisementID: ad.ID,
		Amount:          amount,
	}); err != nil {
		f.log.Warn().Err(err).Str("ad_id", ad.ID).Msg("reward grant failed")
		return
	}

	f.log.Info().Str("ad_id", ad.ID).Int("amount", amount).Msg("reward granted")
	if f.onReward != nil {
		f.onReward(ad.ID, amount)
	}
}

// OpenDrawer opens the comment drawer for the active ad, pausing its
// playback for the drawer's lifetime. Only one drawer is open at a
// time; an already open one is closed first.
func (f *Feed) OpenDrawer(ctx context.Context) (*drawer.Session, error) {
	ad := f.Active()
	if ad == nil {
		return nil, common.ErrAdvertisementNotFound
	}

	f.mu.Lock()
	if f.drawer != nil {
		f.drawer.Close()
		f.drawer = nil
	}
	f.mu.Unlock()

	opts := f.drawerOpts
	opts.Playback = playbackAdapter{players: f.players}
	session := drawer.NewSession(f.drawerAPI, f.transport, f.identity, ad.ID, opts)
	if err := session.Open(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.drawer = session
	f.mu.Unlock()
	return session, nil
}

// CloseDrawer closes the open drawer, if any.
func (f *Feed) CloseDrawer() {
	f.mu.Lock()
	session := f.drawer
	f.drawer = nil
	f.mu.Unlock()
	if session != nil {
		session.Close()
	}
}

// playbackAdapter exposes the player controller through the drawer's
// pause/resume contract.
type playbackAdapter struct {
	players *player.Controller
}

func (p playbackAdapter) Pause()  { p.players.PauseAll() }
func (p playbackAdapter) Resume() { p.players.Resume() }
