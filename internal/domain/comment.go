package domain

import (
	"time"
	"unicode"
)

// ContentKind tags what a comment or reply body contains.
type ContentKind string

const (
	ContentText     ContentKind = "Text"
	ContentImage    ContentKind = "Image"
	ContentEmoticon ContentKind = "Emoticon"
)

// Comment is a discussion item attached to an advertisement.
// Replies is client-side only: populated lazily by the drawer session
// and never sent by the list endpoint.
type Comment struct {
	ID              string      `json:"_id"`
	AdvertisementID string      `json:"advertisementId"`
	WorldID         string      `json:"worldId"`
	Content         string      `json:"content"`
	CommentType     ContentKind `json:"commentType"`
	MediaURL        string      `json:"mediaUrl,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	LikeCount       int         `json:"likeCount"`
	DislikeCount    int         `json:"dislikeCount"`
	// ReplyCount is advisory: the backend sometimes reports 0 even when
	// replies exist, so the drawer always fetches and overwrites it.
	ReplyCount int `json:"replyCount"`

	Replies      []Reply      `json:"replies,omitempty"`
	UserReaction ReactionType `json:"userReaction,omitempty"`
}

// Reply is a second-level discussion item attached to a comment.
type Reply struct {
	ID           string      `json:"_id"`
	CommentID    string      `json:"commentId"`
	WorldID      string      `json:"worldId"`
	Content      string      `json:"content"`
	CommentType  ContentKind `json:"commentType"`
	MediaURL     string      `json:"mediaUrl,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	LikeCount    int         `json:"likeCount"`
	DislikeCount int         `json:"dislikeCount"`

	UserReaction ReactionType `json:"userReaction,omitempty"`
}

// CommentPage is the list response shape for comments.
type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// ReplyPage is the list response shape for replies.
type ReplyPage struct {
	Replies []Reply `json:"replies"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
}

// CreateCommentRequest is the create-comment payload.
type CreateCommentRequest struct {
	AdvertisementID string      `json:"advertisementId"`
	WorldID         string      `json:"worldId"`
	Content         string      `json:"content"`
	CommentType     ContentKind `json:"commentType"`
	MediaURL        string      `json:"mediaUrl"`
}

// CreateReplyRequest is the create-reply payload.
type CreateReplyRequest struct {
	CommentID   string      `json:"commentId"`
	WorldID     string      `json:"worldId"`
	Content     string      `json:"content"`
	CommentType ContentKind `json:"commentType"`
	MediaURL    string      `json:"mediaUrl"`
}

// InferContentKind guesses the content kind of a text body.
// Short non-alphanumeric content is treated as an emoticon. The guess
// is advisory only; the backend owns the authoritative classification.
func InferContentKind(content string) ContentKind {
	runes := []rune(content)
	if len(runes) == 0 || len(runes) > 2 {
		return ContentText
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ContentEmoticon
		}
	}
	return ContentText
}
