package projects

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/latency"
	"github.com/OlmosJT/studio-tarjimon-io/internal/utils"
)

const docURLPrefix = "https://docs.google.com/document/d/"

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe Repo seeded with demo data
type InMemoryRepo struct {
	mu       sync.RWMutex
	projects []Project
	chapters []Chapter
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
		projects: seedProjects(),
		chapters: seedChapters(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) List(ctx context.Context) ([]Project, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Project, len(r.projects))
	for i, p := range r.projects {
		out[i] = copyProject(p)
	}
	return out, nil
}

func (r *InMemoryRepo) Get(ctx context.Context, id string) (*Project, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.ID == id {
			return utils.Ptr(copyProject(p)), nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "project %s", id)
}

func (r *InMemoryRepo) Chapters(ctx context.Context, projectID string) ([]Chapter, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.hasProject(projectID) {
		return nil, errors.Wrapf(errors.ErrNotFound, "project %s", projectID)
	}

	out := []Chapter{}
	for _, c := range r.chapters {
		if c.ProjectID == projectID {
			out = append(out, copyChapter(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SequenceNumber < out[j].SequenceNumber
	})
	return out, nil
}

// CreateChapter adds a DRAFT chapter backed by a freshly generated document.
func (r *InMemoryRepo) CreateChapter(ctx context.Context, req NewChapter) (*Chapter, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "chapter title is required")
	}
	if req.Sequence <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "sequence must be positive")
	}

	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasProject(req.ProjectID) {
		return nil, errors.Wrapf(errors.ErrNotFound, "project %s", req.ProjectID)
	}

	now := r.nowFunc().UTC()
	chapter := Chapter{
		ID:             ulid.Make().String(),
		ProjectID:      req.ProjectID,
		SequenceNumber: req.Sequence,
		Title:          req.Title,
		GoogleDocURL:   docURLPrefix + "new-generated-doc-" + ulid.Make().String(),
		Status:         ChapterDraft,
		CreatedAt:      now,
	}
	r.chapters = append(r.chapters, chapter)
	return utils.Ptr(copyChapter(chapter)), nil
}

// UpdateChapterStatus moves a chapter through its workflow. Publishing stamps
// the publication time.
func (r *InMemoryRepo) UpdateChapterStatus(ctx context.Context, chapterID string, status ChapterStatus) (*Chapter, error) {
	if !status.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unknown chapter status %q", status)
	}

	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.chapters {
		if r.chapters[i].ID != chapterID {
			continue
		}
		r.chapters[i].Status = status
		if status == ChapterPublished {
			r.chapters[i].PublishedAt = utils.Ptr(r.nowFunc().UTC())
		}
		return utils.Ptr(copyChapter(r.chapters[i])), nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "chapter %s", chapterID)
}

// hasProject expects the caller to hold the lock
func (r *InMemoryRepo) hasProject(id string) bool {
	for _, p := range r.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func copyProject(p Project) Project {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

func copyChapter(c Chapter) Chapter {
	if c.PublishedAt != nil {
		c.PublishedAt = utils.Ptr(*c.PublishedAt)
	}
	return c
}
