package rest

import (
	"context"
	"io"

	"github.com/worldads/adwatch/internal/domain"
)

// ListComments fetches one page of comments for an advertisement.
func (c *Client) ListComments(ctx context.Context, advertisementID string, page, limit int) (*domain.CommentPage, error) {
	var out domain.CommentPage
	err := c.getJSON(ctx, "/api/v1/comments/advertisement/"+advertisementID,
		pageQuery(page, limit), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateComment posts a text comment.
func (c *Client) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error) {
	var comment domain.Comment
	if err := c.postJSON(ctx, "/api/v1/comments", req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateCommentWithMedia posts a comment with an attached media file
// as multipart form data.
func (c *Client) CreateCommentWithMedia(ctx context.Context, req domain.CreateCommentRequest, filename string, media io.Reader) (*domain.Comment, error) {
	fields := map[string]string{
		"advertisementId": req.AdvertisementID,
		"worldId":         req.WorldID,
		"content":         req.Content,
		"commentType":     string(req.CommentType),
	}
	var comment domain.Comment
	err := c.postMultipart(ctx, "/api/v1/comments/with-media", fields, "media", filename, media, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListReplies fetches one page of replies for a comment.
func (c *Client) ListReplies(ctx context.Context, commentID string, page, limit int) (*domain.ReplyPage, error) {
	var out domain.ReplyPage
	err := c.getJSON(ctx, "/api/v1/comments/reply/comment/"+commentID,
		pageQuery(page, limit), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReply posts a text reply.
func (c *Client) CreateReply(ctx context.Context, req domain.CreateReplyRequest) (*domain.Reply, error) {
	var reply domain.Reply
	if err := c.postJSON(ctx, "/api/v1/comments/reply", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// CreateReplyWithMedia posts a reply with an attached media file.
func (c *Client) CreateReplyWithMedia(ctx context.Context, req domain.CreateReplyRequest, filename string, media io.Reader) (*domain.Reply, error) {
	fields := map[string]string{
		"commentId":   req.CommentID,
		"worldId":     req.WorldID,
		"content":     req.Content,
		"commentType": string(req.CommentType),
	}
	var reply domain.Reply
	err := c.postMultipart(ctx, "/api/v1/comments/reply/with-media", fields, "media", filename, media, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
