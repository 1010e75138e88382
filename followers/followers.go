// Package followers lists the people following a translator.
package followers

import (
	"context"
	"sync"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/latency"
	"github.com/OlmosJT/studio-tarjimon-io/internal/utils"
)

type Role string

const (
	RoleTranslator Role = "TRANSLATOR"
	RoleReader     Role = "READER"
)

// Stats carries the counter relevant to the follower's role
type Stats struct {
	ProjectsCount    *int `json:"projects_count,omitempty"`
	ReadingListCount *int `json:"reading_list_count,omitempty"`
}

type Follower struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   Role   `json:"role"`
	// IsFollowing reports whether the translator follows them back
	IsFollowing bool  `json:"isFollowing"`
	Stats       Stats `json:"stats"`
}

type Repo interface {
	List(ctx context.Context) ([]Follower, error)
	// ToggleFollow flips IsFollowing. Unknown ids are ignored; the call
	// still succeeds.
	ToggleFollow(ctx context.Context, id string) (bool, error)
}

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu        sync.RWMutex
	followers []Follower
	latency   time.Duration
}

func NewInMemoryRepo(d time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		followers: seedFollowers(),
		latency:   d,
	}
}

func (r *InMemoryRepo) List(ctx context.Context) ([]Follower, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Follower, len(r.followers))
	for i, f := range r.followers {
		out[i] = f
		out[i].Stats = Stats{
			ProjectsCount:    copyInt(f.Stats.ProjectsCount),
			ReadingListCount: copyInt(f.Stats.ReadingListCount),
		}
	}
	return out, nil
}

func (r *InMemoryRepo) ToggleFollow(ctx context.Context, id string) (bool, error) {
	if err := latency.Wait(ctx, r.latency); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.followers {
		if r.followers[i].ID == id {
			r.followers[i].IsFollowing = !r.followers[i].IsFollowing
			break
		}
	}
	return true, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return utils.Ptr(*v)
}

func seedFollowers() []Follower {
	return []Follower{
		{ID: "t1", Name: "Jasmina Karimova", Avatar: "https://i.pravatar.cc/150?u=jasmina", Role: RoleTranslator, IsFollowing: true, Stats: Stats{ProjectsCount: utils.Ptr(12)}},
		{ID: "t2", Name: "Rustam Aliyev", Avatar: "https://i.pravatar.cc/150?u=rustam", Role: RoleTranslator, Stats: Stats{ProjectsCount: utils.Ptr(5)}},
		{ID: "r1", Name: "FanBoy99", Avatar: "https://i.pravatar.cc/150?u=fanboy", Role: RoleReader, Stats: Stats{ReadingListCount: utils.Ptr(45)}},
		{ID: "r2", Name: "BookWorm_UZ", Avatar: "https://i.pravatar.cc/150?u=bookworm", Role: RoleReader, IsFollowing: true, Stats: Stats{ReadingListCount: utils.Ptr(120)}},
		{ID: "r3", Name: "Newbie_Reader", Avatar: "/avatar-default.png", Role: RoleReader, Stats: Stats{ReadingListCount: utils.Ptr(2)}},
	}
}
