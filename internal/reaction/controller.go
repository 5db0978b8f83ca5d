package reaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/pkg/logger"
)

// API is the slice of the REST client the controller needs.
type API interface {
	CreateReaction(ctx context.Context, reaction domain.Reaction) error
	DeleteReaction(ctx context.Context, targetID string, targetType domain.TargetType, worldID string) error
}

// Identity supplies the stable reactor identity, or fails when the
// caller is not logged in.
type Identity interface {
	RequireWorldID() (string, error)
}

// State is the externally visible reaction state for one target.
type State struct {
	LikeCount    int
	DislikeCount int
	UserReaction domain.ReactionType
	InFlight     bool
}

// Controller is the per-(target, user) like/dislike state machine.
// Transitions apply optimistically, then reconcile with the server;
// any network failure restores the exact pre-action snapshot.
type Controller struct {
	api        API
	identity   Identity
	targetID   string
	targetType domain.TargetType

	mu           sync.Mutex
	likeCount    int
	dislikeCount int
	userReaction domain.ReactionType
	inFlight     bool

	log zerolog.Logger
}

// NewController seeds a controller with the server-reported counts and
// the user's known reaction.
func NewController(api API, identity Identity, targetID string, targetType domain.TargetType,
	likeCount, dislikeCount int, userReaction domain.ReactionType) *Controller {
	return &Controller{
		api:          api,
		identity:     identity,
		targetID:     targetID,
		targetType:   targetType,
		likeCount:    likeCount,
		dislikeCount: dislikeCount,
		userReaction: userReaction,
		log:          logger.WithComponent("reaction"),
	}
}

// Like applies a Like action.
func (c *Controller) Like(ctx context.Context) error {
	return c.react(ctx, domain.ReactionLike)
}

// Dislike applies a Dislike action.
func (c *Controller) Dislike(ctx context.Context) error {
	return c.react(ctx, domain.ReactionDislike)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		LikeCount:    c.likeCount,
		DislikeCount: c.dislikeCount,
		UserReaction: c.userReaction,
		InFlight:     c.inFlight,
	}
}

func (c *Controller) react(ctx context.Context, kind domain.ReactionType) error {
	worldID, err := c.identity.RequireWorldID()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return common.ErrReactionInFlight
	}

	// The snapshot must survive until the request settles so rollback
	// restores all three fields exactly.
	snapshot := State{
		LikeCount:    c.likeCount,
		DislikeCount: c.dislikeCount,
		UserReaction: c.userReaction,
	}
	previous := c.userReaction
	c.applyLocked(kind)
	c.inFlight = true
	c.mu.Unlock()

	err = c.reconcile(ctx, worldID, previous, kind)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.likeCount = snapshot.LikeCount
		c.dislikeCount = snapshot.DislikeCount
		c.userReaction = snapshot.UserReaction
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Str("target", c.targetID).Msg("reaction rolled back")
		return fmt.Errorf("reaction %s on %s: %w", kind, c.targetID, err)
	}
	return nil
}

// applyLocked performs the optimistic transition. Counts never go
// below zero.
func (c *Controller) applyLocked(kind domain.ReactionType) {
	switch {
	case c.userReaction == kind:
		// Toggle off.
		if kind == domain.ReactionLike {
			c.likeCount = clamp(c.likeCount - 1)
		} else {
			c.dislikeCount = clamp(c.dislikeCount - 1)
		}
		c.userReaction = domain.ReactionNone

	case c.userReaction != domain.ReactionNone:
		// Switch sides.
		if kind == domain.ReactionLike {
			c.likeCount++
			c.dislikeCount = clamp(c.dislikeCount - 1)
		} else {
			c.dislikeCount++
			c.likeCount = clamp(c.likeCount - 1)
		}
		c.userReaction = kind

	default:
		// Fresh reaction.
		if kind == domain.ReactionLike {
			c.likeCount++
		} else {
			c.dislikeCount++
		}
		c.userReaction = kind
	}
}

// reconcile issues the network calls matching the transition:
// delete-only when clearing, delete-then-post when switching, and
// post-only when setting from none.
func (c *Controller) reconcile(ctx context.Context, worldID string, previous, kind domain.ReactionType) error {
	switch {
	case previous == kind:
		return c.api.DeleteReaction(ctx, c.targetID, c.targetType, worldID)

	case previous != domain.ReactionNone:
		if err := c.api.DeleteReaction(ctx, c.targetID, c.targetType, worldID); err != nil {
			return err
		}
		return c.api.CreateReaction(ctx, domain.Reaction{
			TargetID:     c.targetID,
			TargetType:   c.targetType,
			WorldID:      worldID,
			ReactionType: kind,
		})

	default:
		return c.api.CreateReaction(ctx, domain.Reaction{
			TargetID:     c.targetID,
			TargetType:   c.targetType,
			WorldID:      worldID,
			ReactionType: kind,
		})
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
