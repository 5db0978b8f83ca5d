package feed

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/internal/transport"
)

type fakeFeedAPI struct {
	mu      sync.Mutex
	ads     []domain.Advertisement
	adsErr  error
	rewards []domain.CreateRewardRequest
	rewErr  error
}

func (f *fakeFeedAPI) ListAdvertisements(ctx context.Context) ([]domain.Advertisement, error) {
	if f.adsErr != nil {
		return nil, f.adsErr
	}
	return f.ads, nil
}

func (f *fakeFeedAPI) CreateReward(ctx context.Context, req domain.CreateRewardRequest) (*domain.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rewErr != nil {
		return nil, f.rewErr
	}
	f.rewards = append(f.rewards, req)
	return &domain.Reward{ID: "r1", WorldID: req.WorldID, AdvertisementID: req.AdvertisementID, Amount: req.Amount}, nil
}

func (f *fakeFeedAPI) grantedRewards() []domain.CreateRewardRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CreateRewardRequest, len(f.rewards))
	copy(out, f.rewards)
	return out
}

// fakeDrawerAPI satisfies the drawer contract with an empty thread.
type fakeDrawerAPI struct{}

func (fakeDrawerAPI) ListComments(ctx context.Context, advertisementID string, page, limit int) (*domain.CommentPage, error) {
	return &domain.CommentPage{Page: page, Limit: limit}, nil
}

func (fakeDrawerAPI) ListReplies(ctx context.Context, commentID string, page, limit int) (*domain.ReplyPage, error) {
	return &domain.ReplyPage{Page: page, Limit: limit}, nil
}

func (fakeDrawerAPI) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error) {
	return &domain.Comment{ID: "c1"}, nil
}

func (fakeDrawerAPI) CreateCommentWithMedia(ctx context.Context, req domain.CreateCommentRequest, filename string, media io.Reader) (*domain.Comment, error) {
	return &domain.Comment{ID: "c1"}, nil
}

func (fakeDrawerAPI) CreateReply(ctx context.Context, req domain.CreateReplyRequest) (*domain.Reply, error) {
	return &domain.Reply{ID: "re1"}, nil
}

func (fakeDrawerAPI) CreateReplyWithMedia(ctx context.Context, req domain.CreateReplyRequest, filename string, media io.Reader) (*domain.Reply, error) {
	return &domain.Reply{ID: "re1"}, nil
}

func (fakeDrawerAPI) ListUserReactionsForAd(ctx context.Context, worldID, advertisementID string) ([]domain.Reaction, error) {
	return nil, nil
}

type fakeTransport struct {
	mu    sync.Mutex
	joins []string
	leave []string
}

func (f *fakeTransport) Subscribe(eventType string, fn transport.Handler) func() {
	return func() {}
}

func (f *fakeTransport) Send(ctx context.Context, eventType string, payload any) {}

func (f *fakeTransport) JoinRoom(ctx context.Context, roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, roomID)
}

func (f *fakeTransport) LeaveRoom(ctx context.Context, roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leave = append(f.leave, roomID)
}

type testIdentity struct {
	worldID string
	err     error
}

func (t testIdentity) RequireWorldID() (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.worldID, nil
}

func feedAds() []domain.Advertisement {
	ads := []domain.Advertisement{
		{ID: "ad1", AdsName: "image ad", CreativeType: "Image", CreativeURL: "https://cdn.example.com/a.png"},
		{ID: "ad2", AdsName: "video ad", CreativeType: "Video", CreativeURL: "https://cdn.example.com/b.mp4"},
		{ID: "ad3", AdsName: "html ad", CreativeType: "HTML", CreativeURL: "https://ads.example.com/page"},
	}
	for i := range ads {
		ads[i].Resolve()
	}
	return ads
}

func newTestFeed(t *testing.T, api *fakeFeedAPI, identity Identity, opts Options) *Feed {
	t.Helper()
	if opts.HTMLCompleteAfter == 0 {
		opts.HTMLCompleteAfter = 30 * time.Millisecond
	}
	if opts.ImageCompleteAfter == 0 {
		opts.ImageCompleteAfter = 20 * time.Millisecond
	}
	return New(api, fakeDrawerAPI{}, &fakeTransport{}, identity, opts)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLoadPopulatesFeed(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{})

	require.NoError(t, f.Load(context.Background()))

	assert.Len(t, f.Ads(), 3)
	active := f.Active()
	require.NotNil(t, active)
	assert.Equal(t, "ad1", active.ID)
	assert.Equal(t, domain.CreativeImage, active.Creative.Kind)
}

func TestLoadFailureDegradesToEmptyFeed(t *testing.T) {
	api := &fakeFeedAPI{adsErr: errors.New("boom")}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{})

	require.NoError(t, f.Load(context.Background()))

	assert.Empty(t, f.Ads())
	assert.Nil(t, f.Active())
}

func TestImageSlideCompletesAfterViewTime(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	var mu sync.Mutex
	var rewarded []int
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		OnReward: func(adID string, amount int) {
			mu.Lock()
			rewarded = append(rewarded, amount)
			mu.Unlock()
		},
	})
	require.NoError(t, f.Load(context.Background()))

	waitFor(t, func() bool { return f.Completed("ad1") }, "image slide never completed")
	waitFor(t, func() bool { return len(api.grantedRewards()) == 1 }, "reward never granted")

	granted := api.grantedRewards()
	assert.Equal(t, "ad1", granted[0].AdvertisementID)
	assert.Equal(t, "w1", granted[0].WorldID)
	assert.Equal(t, 5, granted[0].Amount)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, rewarded)
}

func TestVideoSlideCompletesOnPlayerEnd(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	f.Next()
	require.Equal(t, "ad2", f.Active().ID)
	assert.False(t, f.Completed("ad2"))

	f.Complete("ad2")

	assert.True(t, f.Completed("ad2"))
	granted := api.grantedRewards()
	require.Len(t, granted, 1)
	assert.Equal(t, 10, granted[0].Amount)
}

func TestCompleteIsOneShot(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	f.Complete("ad2")
	f.Complete("ad2")

	assert.Len(t, api.grantedRewards(), 1)
}

func TestAnonymousViewCompletesWithoutReward(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{err: common.ErrNotAuthenticated}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	f.Complete("ad2")

	assert.True(t, f.Completed("ad2"))
	assert.Empty(t, api.grantedRewards())
}

func TestRewardFailureDoesNotFireCallback(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds(), rewErr: errors.New("insufficient budget")}
	fired := false
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
		OnReward:           func(adID string, amount int) { fired = true },
	})
	require.NoError(t, f.Load(context.Background()))

	f.Complete("ad2")

	assert.True(t, f.Completed("ad2"))
	assert.False(t, fired)
}

func TestSelectClampsToBounds(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	f.Prev()
	assert.Equal(t, "ad1", f.Active().ID)

	f.Next()
	f.Next()
	f.Next()
	assert.Equal(t, "ad3", f.Active().ID)
}

func TestUnknownAdCompleteIgnored(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	f.Complete("missing")

	assert.False(t, f.Completed("missing"))
	assert.Empty(t, api.grantedRewards())
}

func TestDrawerLifecycle(t *testing.T) {
	api := &fakeFeedAPI{ads: feedAds()}
	tr := &fakeTransport{}
	f := New(api, fakeDrawerAPI{}, tr, testIdentity{worldID: "w1"}, Options{
		ImageCompleteAfter: time.Hour,
		HTMLCompleteAfter:  time.Hour,
	})
	require.NoError(t, f.Load(context.Background()))

	session, err := f.OpenDrawer(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)

	tr.mu.Lock()
	joins := append([]string(nil), tr.joins...)
	tr.mu.Unlock()
	assert.Equal(t, []string{"ad:ad1"}, joins)

	f.CloseDrawer()

	waitFor(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.leave) == 1
	}, "drawer never left the room")
}

func TestOpenDrawerOnEmptyFeed(t *testing.T) {
	api := &fakeFeedAPI{adsErr: errors.New("down")}
	f := newTestFeed(t, api, testIdentity{worldID: "w1"}, Options{})
	require.NoError(t, f.Load(context.Background()))

	_, err := f.OpenDrawer(context.Background())
	assert.ErrorIs(t, err, common.ErrAdvertisementNotFound)
}
