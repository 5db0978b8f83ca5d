package mockd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
)

func TestUpsertUserIsIdempotent(t *testing.T) {
	s := NewStore()

	a := s.UpsertUser(domain.CreateUserRequest{WorldID: "w1", WalletAddress: "0xabc"})
	b := s.UpsertUser(domain.CreateUserRequest{WorldID: "w1", WalletAddress: "0xdef"})

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "0xabc", b.WalletAddress)

	got, err := s.UserByWorldID("w1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.UserByWorldID("missing")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestCommentsPaginationNewestFirst(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.CreateComment(domain.CreateCommentRequest{
			AdvertisementID: "ad1", WorldID: "w1",
			Content: "c", CommentType: domain.ContentText,
		})
	}
	s.CreateComment(domain.CreateCommentRequest{
		AdvertisementID: "ad2", WorldID: "w1",
		Content: "other ad", CommentType: domain.ContentText,
	})

	page1, total := s.CommentsForAd("ad1", 1, 3)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 3)

	page2, _ := s.CommentsForAd("ad1", 2, 3)
	require.Len(t, page2, 2)

	page3, _ := s.CommentsForAd("ad1", 3, 3)
	assert.Empty(t, page3)

	for i := 1; i < len(page1); i++ {
		assert.False(t, page1[i].CreatedAt.After(page1[i-1].CreatedAt))
	}
}

func TestReplyCountReported(t *testing.T) {
	s := NewStore()
	c := s.CreateComment(domain.CreateCommentRequest{
		AdvertisementID: "ad1", WorldID: "w1",
		Content: "parent", CommentType: domain.ContentText,
	})

	for i := 0; i < 2; i++ {
		_, err := s.CreateReply(domain.CreateReplyRequest{
			CommentID: c.ID, WorldID: "w1",
			Content: "child", CommentType: domain.ContentText,
		})
		require.NoError(t, err)
	}

	comments, _ := s.CommentsForAd("ad1", 1, 10)
	require.Len(t, comments, 1)
	assert.Equal(t, 2, comments[0].ReplyCount)

	replies, total := s.RepliesForComment(c.ID, 1, 10)
	assert.Equal(t, 2, total)
	assert.Len(t, replies, 2)
}

func TestReplyToMissingComment(t *testing.T) {
	s := NewStore()
	_, err := s.CreateReply(domain.CreateReplyRequest{
		CommentID: "nope", WorldID: "w1", Content: "x",
	})
	assert.ErrorIs(t, err, common.ErrCommentNotFound)
}

func TestReactionLifecycleAdjustsCounters(t *testing.T) {
	s := NewStore()
	c := s.CreateComment(domain.CreateCommentRequest{
		AdvertisementID: "ad1", WorldID: "w1",
		Content: "hi", CommentType: domain.ContentText,
	})

	require.NoError(t, s.SetReaction(domain.Reaction{
		TargetID: c.ID, TargetType: domain.TargetComment,
		WorldID: "w2", ReactionType: domain.ReactionLike,
	}))
	comments, _ := s.CommentsForAd("ad1", 1, 10)
	assert.Equal(t, 1, comments[0].LikeCount)

	// Switching replaces the previous reaction.
	require.NoError(t, s.SetReaction(domain.Reaction{
		TargetID: c.ID, TargetType: domain.TargetComment,
		WorldID: "w2", ReactionType: domain.ReactionDislike,
	}))
	comments, _ = s.CommentsForAd("ad1", 1, 10)
	assert.Equal(t, 0, comments[0].LikeCount)
	assert.Equal(t, 1, comments[0].DislikeCount)

	r, err := s.UserReaction(c.ID, domain.TargetComment, "w2")
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionDislike, r.ReactionType)

	require.NoError(t, s.DeleteReaction(c.ID, domain.TargetComment, "w2"))
	comments, _ = s.CommentsForAd("ad1", 1, 10)
	assert.Equal(t, 0, comments[0].DislikeCount)

	_, err = s.UserReaction(c.ID, domain.TargetComment, "w2")
	assert.ErrorIs(t, err, common.ErrReactionNotFound)

	err = s.DeleteReaction(c.ID, domain.TargetComment, "w2")
	assert.ErrorIs(t, err, common.ErrReactionNotFound)
}

func TestUserReactionsForAdSpansRepliesToo(t *testing.T) {
	s := NewStore()
	c := s.CreateComment(domain.CreateCommentRequest{
		AdvertisementID: "ad1", WorldID: "w1",
		Content: "hi", CommentType: domain.ContentText,
	})
	reply, err := s.CreateReply(domain.CreateReplyRequest{
		CommentID: c.ID, WorldID: "w1", Content: "yo", CommentType: domain.ContentText,
	})
	require.NoError(t, err)

	require.NoError(t, s.SetReaction(domain.Reaction{
		TargetID: c.ID, TargetType: domain.TargetComment,
		WorldID: "w2", ReactionType: domain.ReactionLike,
	}))
	require.NoError(t, s.SetReaction(domain.Reaction{
		TargetID: reply.ID, TargetType: domain.TargetReply,
		WorldID: "w2", ReactionType: domain.ReactionDislike,
	}))
	require.NoError(t, s.SetReaction(domain.Reaction{
		TargetID: c.ID, TargetType: domain.TargetComment,
		WorldID: "w3", ReactionType: domain.ReactionLike,
	}))

	got := s.UserReactionsForAd("ad1", "w2")
	assert.Len(t, got, 2)
}

func TestRewardGrantedOnce(t *testing.T) {
	s := NewStore()
	req := domain.CreateRewardRequest{WorldID: "w1", AdvertisementID: "ad1", Amount: 10}

	first, err := s.CreateReward(req)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Amount)

	_, err = s.CreateReward(req)
	assert.ErrorIs(t, err, common.ErrRewardAlreadyGranted)

	rewards := s.RewardsForUser("w1")
	assert.Len(t, rewards, 1)
}

func TestFavoriteDeduped(t *testing.T) {
	s := NewStore()
	req := domain.CreateFavoriteRequest{WorldID: "w1", AdvertisementID: "ad1"}

	a := s.CreateFavorite(req)
	b := s.CreateFavorite(req)
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, s.FavoritesForUser("w1"), 1)
}

func TestSampleAdsResolved(t *testing.T) {
	ads := SampleAds()
	require.Len(t, ads, 3)
	assert.Equal(t, domain.CreativeVideo, ads[0].Creative.Kind)
	assert.Equal(t, domain.VideoSourceYouTube, ads[0].Creative.VideoSource)
	assert.Equal(t, domain.CreativeImage, ads[1].Creative.Kind)
	assert.Equal(t, domain.CreativeHTML, ads[2].Creative.Kind)
}
