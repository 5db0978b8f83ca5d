package drawer

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/internal/transport"
	"github.com/worldads/adwatch/pkg/logger"
)

// API is the slice of the REST client the drawer needs.
type API interface {
	ListComments(ctx context.Context, advertisementID string, page, limit int) (*domain.CommentPage, error)
	ListReplies(ctx context.Context, commentID string, page, limit int) (*domain.ReplyPage, error)
	CreateComment(ctx context.Context, req domain.CreateCommentRequest) (*domain.Comment, error)
	CreateCommentWithMedia(ctx context.Context, req domain.CreateCommentRequest, filename string, media io.Reader) (*domain.Comment, error)
	CreateReply(ctx context.Context, req domain.CreateReplyRequest) (*domain.Reply, error)
	CreateReplyWithMedia(ctx context.Context, req domain.CreateReplyRequest, filename string, media io.Reader) (*domain.Reply, error)
	ListUserReactionsForAd(ctx context.Context, advertisementID, worldID string) ([]domain.Reaction, error)
}

// Transport is the live-update channel the drawer needs.
type Transport interface {
	Subscribe(eventType string, fn transport.Handler) func()
	Send(ctx context.Context, eventType string, payload any)
	JoinRoom(ctx context.Context, roomID string)
	LeaveRoom(ctx context.Context, roomID string)
}

// Identity supplies the author identity for posting.
type Identity interface {
	RequireWorldID() (string, error)
}

// Playback is the surface paused while the drawer covers it.
type Playback interface {
	Pause()
	Resume()
}

// Options tune a session. Zero values fall back to defaults.
type Options struct {
	PageLimit   int
	ResumeDelay time.Duration
	Playback    Playback
	// OnChange fires after every state mutation so a view can re-render.
	OnChange func()
}

const defaultResumeDelay = 300 * time.Millisecond

// Session is one open comment drawer for one advertisement: the
// paginated comment/reply tree plus its live room subscription.
type Session struct {
	api       API
	transport Transport
	identity  Identity
	adID      string

	pageLimit   int
	resumeDelay time.Duration
	playback    Playback
	onChange    func()

	mu       sync.RWMutex
	comments []domain.Comment
	total    int
	page     int
	closed   bool

	unsubs []func()

	log zerolog.Logger
}

// NewSession creates a closed session; Open starts it.
func NewSession(api API, tr Transport, identity Identity, advertisementID string, opts Options) *Session {
	if opts.PageLimit <= 0 {
		opts.PageLimit = 10
	}
	if opts.ResumeDelay <= 0 {
		opts.ResumeDelay = defaultResumeDelay
	}
	return &Session{
		api:         api,
		transport:   tr,
		identity:    identity,
		adID:        advertisementID,
		pageLimit:   opts.PageLimit,
		resumeDelay: opts.ResumeDelay,
		playback:    opts.Playback,
		onChange:    opts.OnChange,
		log:         logger.WithComponent("drawer").With().Str("ad_id", advertisementID).Logger(),
	}
}

// Open pauses playback, assembles the comment/reply tree and joins the
// advertisement's room. A failed comment-page fetch degrades to an
// empty list; the session still opens and still receives live events.
func (s *Session) Open(ctx context.Context) error {
	if s.playback != nil {
		s.playback.Pause()
	}

	comments := s.assemble(ctx, 1)

	s.mu.Lock()
	s.comments = comments
	s.page = 1
	s.mu.Unlock()

	s.transport.JoinRoom(ctx, domain.RoomID(s.adID))
	s.unsubs = append(s.unsubs,
		s.transport.Subscribe(domain.EventNewComment, s.handleNewComment),
		s.transport.Subscribe(domain.EventNewReply, s.handleNewReply),
	)

	s.notify()
	return nil
}

// assemble fetches one comment page and fans out the reply fetch for
// every comment, merging as they settle. Reply fetch order is not
// request order; a failed fetch leaves that comment with empty replies
// without blocking the rest.
func (s *Session) assemble(ctx context.Context, page int) []domain.Comment {
	pageResp, err := s.api.ListComments(ctx, s.adID, page, s.pageLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("comment fetch failed, showing empty list")
		return []domain.Comment{}
	}

	comments := pageResp.Comments
	s.mu.Lock()
	s.total = pageResp.Total
	s.mu.Unlock()

	// replyCount is advisory and may read 0 even when replies exist, so
	// every comment gets a fetch.
	var wg sync.WaitGroup
	for i := range comments {
		wg.Add(1)
		go func(c *domain.Comment) {
			defer wg.Done()
			c.Replies = s.fetchReplies(ctx, c.ID)
			c.ReplyCount = len(c.Replies)
		}(&comments[i])
	}
	wg.Wait()

	s.seedUserReactions(ctx, comments)
	return comments
}

func (s *Session) fetchReplies(ctx context.Context, commentID string) []domain.Reply {
	resp, err := s.api.ListReplies(ctx, commentID, 1, s.pageLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("comment_id", commentID).Msg("reply fetch failed")
		return []domain.Reply{}
	}
	if resp.Replies == nil {
		return []domain.Reply{}
	}
	return resp.Replies
}

// seedUserReactions fills userReaction on every item from the per-ad
// reaction list. Best-effort: an anonymous viewer or a failed fetch
// just leaves everything unmarked.
func (s *Session) seedUserReactions(ctx context.Context, comments []domain.Comment) {
	worldID, err := s.identity.RequireWorldID()
	if err != nil {
		return
	}
	reactions, err := s.api.ListUserReactionsForAd(ctx, s.adID, worldID)
	if err != nil {
		s.log.Debug().Err(err).Msg("reaction seed fetch failed")
		return
	}

	byTarget := make(map[domain.TargetType]map[string]domain.ReactionType)
	for _, r := range reactions {
		if byTarget[r.TargetType] == nil {
			byTarget[r.TargetType] = make(map[string]domain.ReactionType)
		}
		byTarget[r.TargetType][r.TargetID] = r.ReactionType
	}

	for i := range comments {
		comments[i].UserReaction = byTarget[domain.TargetComment][comments[i].ID]
		for j := range comments[i].Replies {
			comments[i].Replies[j].UserReaction = byTarget[domain.TargetReply][comments[i].Replies[j].ID]
		}
	}
}

// LoadMore fetches the next comment page and appends it.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return common.ErrSessionClosed
	}
	next := s.page + 1
	s.mu.RUnlock()

	comments := s.assemble(ctx, next)
	if len(comments) == 0 {
		return nil
	}

	s.mu.Lock()
	s.comments = append(s.comments, comments...)
	s.page = next
	s.mu.Unlock()
	s.notify()
	return nil
}

// handleNewComment prepends a live comment if it belongs to this ad
// and is not already present (our own posts merge locally before the
// echo arrives).
func (s *Session) handleNewComment(payload json.RawMessage) {
	var comment domain.Comment
	if err := json.Unmarshal(payload, &comment); err != nil {
		s.log.Debug().Err(err).Msg("dropping malformed new_comment payload")
		return
	}
	if comment.AdvertisementID != s.adID {
		return
	}

	s.mu.Lock()
	if s.closed || s.hasCommentLocked(comment.ID) {
		s.mu.Unlock()
		return
	}
	if comment.Replies == nil {
		comment.Replies = []domain.Reply{}
	}
	s.comments = append([]domain.Comment{comment}, s.comments...)
	s.total++
	s.mu.Unlock()
	s.notify()
}

// handleNewReply re-fetches the affected comment's replies rather than
// splicing the payload in: concurrent replies from other clients make
// the single event an unreliable source of the full list.
func (s *Session) handleNewReply(payload json.RawMessage) {
	var reply domain.Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		s.log.Debug().Err(err).Msg("dropping malformed new_reply payload")
		return
	}

	s.mu.RLock()
	closed := s.closed
	found := s.hasCommentLocked(reply.CommentID)
	s.mu.RUnlock()
	if closed || !found {
		return
	}

	replies := s.fetchReplies(context.Background(), reply.CommentID)

	s.mu.Lock()
	for i := range s.comments {
		if s.comments[i].ID == reply.CommentID {
			s.comments[i].Replies = replies
			s.comments[i].ReplyCount = len(replies)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) hasCommentLocked(id string) bool {
	for i := range s.comments {
		if s.comments[i].ID == id {
			return true
		}
	}
	return false
}

// Comments returns a snapshot of the assembled tree.
func (s *Session) Comments() []domain.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// Total returns the server-reported comment total.
func (s *Session) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Close leaves the room, drops the subscriptions and resumes playback
// after a short delay so the drawer animation settles first.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.transport.LeaveRoom(context.Background(), domain.RoomID(s.adID))
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil

	if s.playback != nil {
		time.AfterFunc(s.resumeDelay, s.playback.Resume)
	}
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// PostComment posts to this session's advertisement. Media posts fall
// back to a text-only post when the upload fails and there is textual
// content to save. The new comment is merged locally at index 0 and
// broadcast so other viewers update live, without waiting for the echo.
func (s *Session) PostComment(ctx context.Context, content string, media io.Reader, filename string) (*domain.Comment, error) {
	worldID, err := s.identity.RequireWorldID()
	if err != nil {
		return nil, err
	}
	if content == "" && media == nil {
		return nil, common.ErrEmptyContent
	}

	req := domain.CreateCommentRequest{
		AdvertisementID: s.adID,
		WorldID:         worldID,
		Content:         content,
		CommentType:     domain.InferContentKind(content),
	}

	var comment *domain.Comment
	if media != nil {
		req.CommentType = domain.ContentImage
		comment, err = s.api.CreateCommentWithMedia(ctx, req, filename, media)
		if err != nil && content != "" {
			s.log.Warn().Err(err).Msg("media upload failed, retrying text-only")
			req.CommentType = domain.InferContentKind(content)
			req.MediaURL = ""
			comment, err = s.api.CreateComment(ctx, req)
		}
	} else {
		comment, err = s.api.CreateComment(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.Replies == nil {
		comment.Replies = []domain.Reply{}
	}

	s.transport.Send(ctx, domain.EventNewComment, comment)

	s.mu.Lock()
	s.comments = append([]domain.Comment{*comment}, s.comments...)
	s.total++
	s.mu.Unlock()
	s.notify()
	return comment, nil
}

// PostReply posts a reply under a comment in this session, merges it
// locally and broadcasts it.
func (s *Session) PostReply(ctx context.Context, commentID, content string, media io.Reader, filename string) (*domain.Reply, error) {
	worldID, err := s.identity.RequireWorldID()
	if err != nil {
		return nil, err
	}
	if content == "" && media == nil {
		return nil, common.ErrEmptyContent
	}

	req := domain.CreateReplyRequest{
		CommentID:   commentID,
		WorldID:     worldID,
		Content:     content,
		CommentType: domain.InferContentKind(content),
	}

	var reply *domain.Reply
	if media != nil {
		req.CommentType = domain.ContentImage
		reply, err = s.api.CreateReplyWithMedia(ctx, req, filename, media)
		if err != nil && content != "" {
			s.log.Warn().Err(err).Msg("media upload failed, retrying text-only")
			req.CommentType = domain.InferContentKind(content)
			req.MediaURL = ""
			reply, err = s.api.CreateReply(ctx, req)
		}
	} else {
		reply, err = s.api.CreateReply(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}

	s.transport.Send(ctx, domain.EventNewReply, reply)

	s.mu.Lock()
	for i := range s.comments {
		if s.comments[i].ID == commentID {
			s.comments[i].Replies = append(s.comments[i].Replies, *reply)
			s.comments[i].ReplyCount = len(s.comments[i].Replies)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	return reply, nil
}
