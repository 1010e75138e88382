package profiles

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/latency"
)

// Demo profile, owned by the demo identity account
const (
	DemoUserID   = "u1"
	DemoPassword = "password"
)

const defaultAvatar = "/avatar-default.png"

type record struct {
	profile      Profile
	passwordHash string // empty when the password lives only with the identity backend
}

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu         sync.RWMutex
	records    map[string]*record
	latency    time.Duration
	bcryptCost int
}

type Option func(*InMemoryRepo)

func WithLatency(d time.Duration) Option {
	return func(r *InMemoryRepo) {
		r.latency = d
	}
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(r *InMemoryRepo) {
		r.bcryptCost = cost
	}
}

func NewInMemoryRepo(options ...Option) (*InMemoryRepo, error) {
	r := &InMemoryRepo{
		records:    make(map[string]*record),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range options {
		opt(r)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), r.bcryptCost)
	if err != nil {
		return nil, errors.Wrapf(err, "hashing demo password")
	}
	r.records[DemoUserID] = &record{
		profile: Profile{
			ID:             DemoUserID,
			Email:          "test@demo.com",
			Role:           identity.RoleTranslator,
			ProfileID:      "profile-uuid-1",
			DisplayName:    "Olmos Davronov",
			Bio:            "Passionate about translating fantasy novels. I love bringing stories to life for Uzbek readers.",
			AvatarURL:      defaultAvatar,
			Badge:          BadgeHobbyist,
			TotalProjects:  12,
			TotalFollowers: 340,
		},
		passwordHash: string(hash),
	}
	return r, nil
}

func (r *InMemoryRepo) Get(ctx context.Context, user identity.User) (*Profile, error) {
	if user.ID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "user id is required")
	}
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[user.ID]
	if !ok {
		rec = &record{profile: newProfile(user)}
		r.records[user.ID] = rec
	}
	p := rec.profile
	return &p, nil
}

// Update merges the non-empty fields of update into the profile.
func (r *InMemoryRepo) Update(ctx context.Context, userID string, update Update) (*Profile, error) {
	if update.Badge != "" && !update.Badge.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unknown badge %q", update.Badge)
	}
	if err := latency.Wait(ctx, r.latency); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "profile %s", userID)
	}
	p := &rec.profile
	if v := strings.TrimSpace(update.DisplayName); v != "" {
		p.DisplayName = v
	}
	if v := strings.TrimSpace(update.Bio); v != "" {
		p.Bio = v
	}
	if v := strings.TrimSpace(update.AvatarURL); v != "" {
		p.AvatarURL = v
	}
	if update.Badge != "" {
		p.Badge = update.Badge
	}
	out := *p
	return &out, nil
}

func (r *InMemoryRepo) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if err := ValidatePasswordStrength(next); err != nil {
		return err
	}
	if err := latency.Wait(ctx, r.latency); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "profile %s", userID)
	}
	if rec.passwordHash == "" || bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(current)) != nil {
		return errors.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), r.bcryptCost)
	if err != nil {
		return errors.Wrapf(err, "hashing password")
	}
	rec.passwordHash = string(hash)
	return nil
}

func newProfile(user identity.User) Profile {
	avatar := user.AvatarURL
	if avatar == "" {
		avatar = defaultAvatar
	}
	return Profile{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		ProfileID:   uuid.NewString(),
		DisplayName: user.DisplayName(),
		AvatarURL:   avatar,
		Badge:       BadgeHobbyist,
	}
}
