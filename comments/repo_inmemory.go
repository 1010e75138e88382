package comments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/latency"
	"github.com/OlmosJT/studio-tarjimon-io/internal/utils"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu       sync.RWMutex
	comments []Comment
	latency  time.Duration
	nowFunc  func() time.Time
}

type Option func(*InMemoryRepo)

func WithLatency(d time.Duration) Option {
	return func(r *InMemoryRepo) {
		r.latency = d
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowFunc = now
	}
}

func NewInMemoryRepo(options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		comments: seedComments(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) List(ctx context.Context) ([]Comment, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyThread(r.comments), nil
}

// Reply appends a reply to its parent. The reply is placed on the parent's
// chapter and carries the parent's context.
func (r *InMemoryRepo) Reply(ctx context.Context, reply Reply) (*Comment, error) {
	content := strings.TrimSpace(reply.Content)
	if content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "reply content is required")
	}

	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent := find(r.comments, reply.ParentID)
	if parent == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "comment %s", reply.ParentID)
	}

	now := r.nowFunc().UTC()
	c := Comment{
		ID:              ulid.Make().String(),
		ChapterID:       parent.ChapterID,
		UserID:          reply.UserID,
		ParentCommentID: utils.Ptr(parent.ID),
		Content:         content,
		CreatedAt:       now,
		UpdatedAt:       now,
		Author:          reply.Author,
		Context:         parent.Context,
		Replies:         []Comment{},
	}
	parent.Replies = append(parent.Replies, c)

	out := copyComment(c)
	return &out, nil
}

// find walks the thread depth first; callers hold the lock.
func find(thread []Comment, id string) *Comment {
	for i := range thread {
		if thread[i].ID == id {
			return &thread[i]
		}
		if c := find(thread[i].Replies, id); c != nil {
			return c
		}
	}
	return nil
}

func copyThread(thread []Comment) []Comment {
	out := make([]Comment, len(thread))
	for i, c := range thread {
		out[i] = copyComment(c)
	}
	return out
}

func copyComment(c Comment) Comment {
	if c.ParentCommentID != nil {
		c.ParentCommentID = utils.Ptr(*c.ParentCommentID)
	}
	c.Replies = copyThread(c.Replies)
	return c
}
