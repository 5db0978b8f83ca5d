package domain

// ReactionType is a Like/Dislike mark. The zero value means the user
// has not reacted.
type ReactionType string

const (
	ReactionNone    ReactionType = ""
	ReactionLike    ReactionType = "Like"
	ReactionDislike ReactionType = "Dislike"
)

// TargetType names what a reaction is attached to.
type TargetType string

const (
	TargetComment TargetType = "Comment"
	TargetReply   TargetType = "Reply"
)

// Reaction is one user's mark on one target. The backend enforces at
// most one reaction per (target, reactor).
type Reaction struct {
	TargetID     string       `json:"targetId"`
	TargetType   TargetType   `json:"targetType"`
	WorldID      string       `json:"worldId"`
	ReactionType ReactionType `json:"reactionType"`
}
