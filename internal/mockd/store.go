package mockd

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
)

// Store is the in-memory backing state for the development server.
// Everything lives for the process lifetime only.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*domain.User // keyed by worldId
	ads       []domain.Advertisement
	comments  map[string]*domain.Comment // keyed by comment id
	replies   map[string]*domain.Reply   // keyed by reply id
	reactions map[string]domain.Reaction // keyed by target|type|world
	rewards   []domain.Reward
	favorites []domain.Favorite
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*domain.User),
		comments:  make(map[string]*domain.Comment),
		replies:   make(map[string]*domain.Reply),
		reactions: make(map[string]domain.Reaction),
	}
}

// SeedAds replaces the ad inventory.
func (s *Store) SeedAds(ads []domain.Advertisement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads = ads
}

func reactionKey(targetID string, targetType domain.TargetType, worldID string) string {
	return strings.Join([]string{targetID, string(targetType), worldID}, "|")
}

// UpsertUser returns the existing user for worldID or creates one.
func (s *Store) UpsertUser(req domain.CreateUserRequest) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[req.WorldID]; ok {
		return u
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:            uuid.NewString(),
		WorldID:       req.WorldID,
		Nickname:      req.Nickname,
		WalletAddress: req.WalletAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.users[req.WorldID] = u
	return u
}

// UserByWorldID looks a user up by the stable worldId key.
func (s *Store) UserByWorldID(worldID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[worldID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

// SetAvatar updates a user's avatar URL.
func (s *Store) SetAvatar(userID, avatarURL string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.AvatarURL = avatarURL
			u.UpdatedAt = time.Now().UTC()
			return u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

// Ads returns the ad inventory.
func (s *Store) Ads() []domain.Advertisement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Advertisement, len(s.ads))
	copy(out, s.ads)
	return out
}

// AdByID returns one advertisement.
func (s *Store) AdByID(id string) (*domain.Advertisement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.ads {
		if s.ads[i].ID == id {
			ad := s.ads[i]
			return &ad, nil
		}
	}
	return nil, common.ErrAdvertisementNotFound
}

// CreateComment stores a new comment.
func (s *Store) CreateComment(req domain.CreateCommentRequest) *domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c := &domain.Comment{
		ID:              uuid.NewString(),
		AdvertisementID: req.AdvertisementID,
		WorldID:         req.WorldID,
		Content:         req.Content,
		CommentType:     req.CommentType,
		MediaURL:        req.MediaURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.comments[c.ID] = c
	return c
}

// CommentsForAd returns one newest-first page plus the total count.
func (s *Store) CommentsForAd(advertisementID string, page, limit int) ([]domain.Comment, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Comment
	for _, c := range s.comments {
		if c.AdvertisementID == advertisementID {
			cc := *c
			cc.ReplyCount = s.replyCountLocked(c.ID)
			all = append(all, cc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * limit
	if start < 0 || start >= total {
		return nil, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (s *Store) commentByID(id string) (*domain.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, false
	}
	cc := *c
	return &cc, true
}

func (s *Store) replyCountLocked(commentID string) int {
	n := 0
	for _, r := range s.replies {
		if r.CommentID == commentID {
			n++
		}
	}
	return n
}

// CreateReply stores a new reply under an existing comment.
func (s *Store) CreateReply(req domain.CreateReplyRequest) (*domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[req.CommentID]; !ok {
		return nil, common.ErrCommentNotFound
	}
	now := time.Now().UTC()
	r := &domain.Reply{
		ID:          uuid.NewString(),
		CommentID:   req.CommentID,
		WorldID:     req.WorldID,
		Content:     req.Content,
		CommentType: req.CommentType,
		MediaURL:    req.MediaURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.replies[r.ID] = r
	return r, nil
}

// RepliesForComment returns one oldest-first page plus the total count.
func (s *Store) RepliesForComment(commentID string, page, limit int) ([]domain.Reply, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Reply
	for _, r := range s.replies {
		if r.CommentID == commentID {
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * limit
	if start < 0 || start >= total {
		return nil, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

// SetReaction places a reaction and adjusts the target's counters. A
// previous reaction from the same user on the same target is replaced.
func (s *Store) SetReaction(r domain.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reactionKey(r.TargetID, r.TargetType, r.WorldID)
	if prev, ok := s.reactions[key]; ok {
		s.adjustCountLocked(prev, -1)
	}
	if err := s.adjustCountLocked(r, +1); err != nil {
		return err
	}
	s.reactions[key] = r
	return nil
}

// DeleteReaction removes a reaction by its composite target key.
func (s *Store) DeleteReaction(targetID string, targetType domain.TargetType, worldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reactionKey(targetID, targetType, worldID)
	prev, ok := s.reactions[key]
	if !ok {
		return common.ErrReactionNotFound
	}
	delete(s.reactions, key)
	return s.adjustCountLocked(prev, -1)
}

func (s *Store) adjustCountLocked(r domain.Reaction, delta int) error {
	switch r.TargetType {
	case domain.TargetComment:
		c, ok := s.comments[r.TargetID]
		if !ok {
			return common.ErrCommentNotFound
		}
		switch r.ReactionType {
		case domain.ReactionLike:
			c.LikeCount = clampNonNegative(c.LikeCount + delta)
		case domain.ReactionDislike:
			c.DislikeCount = clampNonNegative(c.DislikeCount + delta)
		}
	case domain.TargetReply:
		re, ok := s.replies[r.TargetID]
		if !ok {
			return common.ErrNotFound
		}
		switch r.ReactionType {
		case domain.ReactionLike:
			re.LikeCount = clampNonNegative(re.LikeCount + delta)
		case domain.ReactionDislike:
			re.DislikeCount = clampNonNegative(re.DislikeCount + delta)
		}
	default:
		return common.ErrInvalidInput
	}
	return nil
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// UserReaction returns one user's reaction on one target.
func (s *Store) UserReaction(targetID string, targetType domain.TargetType, worldID string) (*domain.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reactions[reactionKey(targetID, targetType, worldID)]
	if !ok {
		return nil, common.ErrReactionNotFound
	}
	return &r, nil
}

// UserReactionsForAd returns every reaction a user placed on targets
// under one advertisement.
func (s *Store) UserReactionsForAd(advertisementID, worldID string) []domain.Reaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reaction
	for _, r := range s.reactions {
		if r.WorldID != worldID {
			continue
		}
		switch r.TargetType {
		case domain.TargetComment:
			if c, ok := s.comments[r.TargetID]; ok && c.AdvertisementID == advertisementID {
				out = append(out, r)
			}
		case domain.TargetReply:
			re, ok := s.replies[r.TargetID]
			if !ok {
				continue
			}
			if c, ok := s.comments[re.CommentID]; ok && c.AdvertisementID == advertisementID {
				out = append(out, r)
			}
		}
	}
	return out
}

// CreateReward appends a ledger entry. Repeat grants for the same
// (world, ad) pair are rejected.
func (s *Store) CreateReward(req domain.CreateRewardRequest) (*domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rewards {
		if r.WorldID == req.WorldID && r.AdvertisementID == req.AdvertisementID {
			return nil, common.ErrRewardAlreadyGranted
		}
	}
	r := domain.Reward{
		ID:              uuid.NewString(),
		WorldID:         req.WorldID,
		AdvertisementID: req.AdvertisementID,
		Amount:          req.Amount,
		CreatedAt:       time.Now().UTC(),
	}
	s.rewards = append(s.rewards, r)
	return &r, nil
}

// RewardsForUser returns every reward a user earned.
func (s *Store) RewardsForUser(worldID string) []domain.Reward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reward
	for _, r := range s.rewards {
		if r.WorldID == worldID {
			out = append(out, r)
		}
	}
	return out
}

// CreateFavorite saves an advertisement for a user. Saving twice
// returns the existing entry.
func (s *Store) CreateFavorite(req domain.CreateFavoriteRequest) *domain.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.favorites {
		if s.favorites[i].WorldID == req.WorldID && s.favorites[i].AdvertisementID == req.AdvertisementID {
			f := s.favorites[i]
			return &f
		}
	}
	f := domain.Favorite{
		ID:              uuid.NewString(),
		WorldID:         req.WorldID,
		AdvertisementID: req.AdvertisementID,
		CreatedAt:       time.Now().UTC(),
	}
	s.favorites = append(s.favorites, f)
	return &f
}

// FavoritesForUser returns the user's saved advertisements.
func (s *Store) FavoritesForUser(worldID string) []domain.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Favorite
	for _, f := range s.favorites {
		if f.WorldID == worldID {
			out = append(out, f)
		}
	}
	return out
}
