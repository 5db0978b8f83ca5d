package mockd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
)

func (s *Server) createUser(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorldID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "worldId is required"})
		return
	}
	c.JSON(http.StatusCreated, s.store.UpsertUser(req))
}

func (s *Server) login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorldID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "worldId is required"})
		return
	}

	user := s.store.UpsertUser(domain.CreateUserRequest{
		WorldID:       req.WorldID,
		WalletAddress: req.WalletAddress,
	})
	token, err := s.tokens.Generate(user.WorldID)
	if err != nil {
		s.log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, domain.LoginResponse{User: *user, Token: token})
}

func (s *Server) getUserByWorldID(c *gin.Context) {
	user, err := s.store.UserByWorldID(c.Param("worldId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	// Files are not persisted; a fake CDN URL stands in.
	avatarURL := fmt.Sprintf("https://cdn.local/avatars/%s-%s", uuid.NewString(), file.Filename)
	user, err := s.store.SetAvatar(c.Param("id"), avatarURL)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listAds(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Ads())
}

func (s *Server) getAd(c *gin.Context) {
	ad, err := s.store.AdByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "advertisement not found"})
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (s *Server) listComments(c *gin.Context) {
	page, limit := pageParams(c)
	comments, total := s.store.CommentsForAd(c.Param("adId"), page, limit)
	c.JSON(http.StatusOK, domain.CommentPage{
		Comments: comments,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

func (s *Server) createComment(c *gin.Context) {
	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.AdvertisementID == "" || req.WorldID == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advertisementId, worldId and content are required"})
		return
	}
	if req.CommentType == "" {
		req.CommentType = domain.ContentText
	}

	comment := s.store.CreateComment(req)
	s.hub.BroadcastComment(comment)
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) createCommentWithMedia(c *gin.Context) {
	req := domain.CreateCommentRequest{
		AdvertisementID: c.PostForm("advertisementId"),
		WorldID:         c.PostForm("worldId"),
		Content:         c.PostForm("content"),
		CommentType:     domain.ContentKind(c.PostForm("commentType")),
	}
	if req.AdvertisementID == "" || req.WorldID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advertisementId and worldId are required"})
		return
	}

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}
	req.MediaURL = fmt.Sprintf("https://cdn.local/media/%s-%s", uuid.NewString(), file.Filename)
	if req.CommentType == "" {
		req.CommentType = domain.ContentImage
	}

	comment := s.store.CreateComment(req)
	s.hub.BroadcastComment(comment)
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) listReplies(c *gin.Context) {
	page, limit := pageParams(c)
	replies, total := s.store.RepliesForComment(c.Param("commentId"), page, limit)
	c.JSON(http.StatusOK, domain.ReplyPage{
		Replies: replies,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

func (s *Server) createReply(c *gin.Context) {
	var req domain.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CommentID == "" || req.WorldID == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commentId, worldId and content are required"})
		return
	}
	if req.CommentType == "" {
		req.CommentType = domain.ContentText
	}

	s.postReply(c, req)
}

func (s *Server) createReplyWithMedia(c *gin.Context) {
	req := domain.CreateReplyRequest{
		CommentID:   c.PostForm("commentId"),
		WorldID:     c.PostForm("worldId"),
		Content:     c.PostForm("content"),
		CommentType: domain.ContentKind(c.PostForm("commentType")),
	}
	if req.CommentID == "" || req.WorldID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commentId and worldId are required"})
		return
	}

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}
	req.MediaURL = fmt.Sprintf("https://cdn.local/media/%s-%s", uuid.NewString(), file.Filename)
	if req.CommentType == "" {
		req.CommentType = domain.ContentImage
	}

	s.postReply(c, req)
}

func (s *Server) postReply(c *gin.Context, req domain.CreateReplyRequest) {
	reply, err := s.store.CreateReply(req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	// The reply event fans out to the parent comment's ad room.
	adID := ""
	if comment, ok := s.store.commentByID(req.CommentID); ok {
		adID = comment.AdvertisementID
	}
	s.hub.BroadcastReply(adID, reply)
	c.JSON(http.StatusCreated, reply)
}

func (s *Server) createReaction(c *gin.Context) {
	var req domain.Reaction
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TargetID == "" || req.WorldID == "" || req.ReactionType == domain.ReactionNone {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetId, worldId and reactionType are required"})
		return
	}

	if err := s.store.SetReaction(req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, common.ErrCommentNotFound) || errors.Is(err, common.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) deleteReaction(c *gin.Context) {
	targetID := c.Query("targetId")
	targetType := domain.TargetType(c.Query("targetType"))
	worldID := c.Query("worldId")
	if targetID == "" || targetType == "" || worldID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetId, targetType and worldId are required"})
		return
	}

	if err := s.store.DeleteReaction(targetID, targetType, worldID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reaction not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getUserReaction(c *gin.Context) {
	reaction, err := s.store.UserReaction(
		c.Query("targetId"),
		domain.TargetType(c.Query("targetType")),
		c.Query("worldId"),
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reaction not found"})
		return
	}
	c.JSON(http.StatusOK, reaction)
}

func (s *Server) listUserReactionsForAd(c *gin.Context) {
	reactions := s.store.UserReactionsForAd(c.Param("adId"), c.Param("worldId"))
	if reactions == nil {
		reactions = []domain.Reaction{}
	}
	c.JSON(http.StatusOK, reactions)
}

func (s *Server) createReward(c *gin.Context) {
	var req domain.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.WorldID == "" || req.AdvertisementID == "" || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "worldId, advertisementId and amount are required"})
		return
	}

	reward, err := s.store.CreateReward(req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "reward already granted"})
		return
	}
	c.JSON(http.StatusCreated, reward)
}

func (s *Server) listUserRewards(c *gin.Context) {
	rewards := s.store.RewardsForUser(c.Param("worldId"))
	if rewards == nil {
		rewards = []domain.Reward{}
	}
	c.JSON(http.StatusOK, rewards)
}

func (s *Server) createFavorite(c *gin.Context) {
	var req domain.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.WorldID == "" || req.AdvertisementID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "worldId and advertisementId are required"})
		return
	}
	c.JSON(http.StatusCreated, s.store.CreateFavorite(req))
}

func (s *Server) listUserFavorites(c *gin.Context) {
	favorites := s.store.FavoritesForUser(c.Param("worldId"))
	if favorites == nil {
		favorites = []domain.Favorite{}
	}
	c.JSON(http.StatusOK, favorites)
}
