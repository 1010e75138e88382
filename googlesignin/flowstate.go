package googlesignin

import (
	"sync"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

// FlowState is what Begin remembers until the browser comes back.
type FlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

// StateStore keeps flow states by their state parameter. Take removes the
// state it returns, so every state can be completed once.
type StateStore interface {
	Put(state string, flow FlowState) error
	Take(state string) (*FlowState, error)
}

// MemoryStateStore is a thread-safe in-memory StateStore. States older than
// the TTL are treated as unknown.
type MemoryStateStore struct {
	mu      sync.Mutex
	states  map[string]FlowState
	ttl     time.Duration
	nowFunc func() time.Time
}

var _ StateStore = (*MemoryStateStore)(nil)

func NewMemoryStateStore(ttl time.Duration, nowFunc func() time.Time) *MemoryStateStore {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &MemoryStateStore{
		states:  make(map[string]FlowState),
		ttl:     ttl,
		nowFunc: nowFunc,
	}
}

func (m *MemoryStateStore) Put(state string, flow FlowState) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge()
	m.states[state] = flow
	return nil
}

func (m *MemoryStateStore) Take(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	flow, ok := m.states[state]
	delete(m.states, state)
	if !ok || m.expired(flow) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state not found")
	}
	return &flow, nil
}

func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

func (m *MemoryStateStore) expired(flow FlowState) bool {
	return !m.nowFunc().Before(flow.CreatedAt.Add(m.ttl))
}

// purge drops abandoned flows; callers hold the lock.
func (m *MemoryStateStore) purge() {
	for k, flow := range m.states {
		if m.expired(flow) {
			delete(m.states, k)
		}
	}
}
