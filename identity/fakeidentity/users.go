package fakeidentity

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

type userRecord struct {
	user         identity.User
	passwordHash string // empty for accounts created through Google
}

type userStore struct {
	lock     sync.RWMutex
	users    map[string]userRecord
	emailIDs map[string]string // email to user id
}

func newUserStore() *userStore {
	return &userStore{
		users:    make(map[string]userRecord),
		emailIDs: make(map[string]string),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// add stores a new user, assigning an ID when missing. An email that is
// already registered returns ErrRegistrationConflict.
func (us *userStore) add(user identity.User, password string) (identity.User, error) {
	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return identity.User{}, errors.Wrapf(err, "hash password")
		}
		hash = string(b)
	}

	us.lock.Lock()
	defer us.lock.Unlock()

	email := normaliseEmail(user.Email)
	if _, taken := us.emailIDs[email]; taken {
		return identity.User{}, errors.ErrRegistrationConflict
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	us.users[user.ID] = userRecord{user: user, passwordHash: hash}
	us.emailIDs[email] = user.ID
	return user, nil
}

func (us *userStore) byEmail(email string) (userRecord, bool) {
	us.lock.RLock()
	defer us.lock.RUnlock()

	id, ok := us.emailIDs[normaliseEmail(email)]
	if !ok {
		return userRecord{}, false
	}
	rec, ok := us.users[id]
	return rec, ok
}

func (us *userStore) byID(id string) (userRecord, bool) {
	us.lock.RLock()
	defer us.lock.RUnlock()

	rec, ok := us.users[id]
	return rec, ok
}

// authenticate checks the password against the stored hash
func (us *userStore) authenticate(email, password string) (identity.User, error) {
	rec, ok := us.byEmail(email)
	if !ok || rec.passwordHash == "" || password == "" {
		return identity.User{}, errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password)); err != nil {
		return identity.User{}, errors.ErrInvalidCredentials
	}
	return rec.user, nil
}
