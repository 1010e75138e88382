package fakeidentity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

const refreshTokenLength = 32 // 32 bytes = 256 bits

// storedRefreshToken is the server-side metadata of an opaque refresh token.
// The client only ever sees Token.
type storedRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// refreshStore issues and rotates refresh tokens, one per user.
type refreshStore struct {
	lock    sync.Mutex
	tokens  map[string]storedRefreshToken
	userIDs map[string]string // user ID to token
}

func newRefreshStore() *refreshStore {
	return &refreshStore{
		tokens:  make(map[string]storedRefreshToken),
		userIDs: make(map[string]string),
	}
}

// create replaces any existing refresh token of the user with a new one
func (rs *refreshStore) create(userID string, now time.Time) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	rs.lock.Lock()
	defer rs.lock.Unlock()

	if existing, ok := rs.userIDs[userID]; ok {
		delete(rs.tokens, existing)
	}
	rs.tokens[tokenStr] = storedRefreshToken{Token: tokenStr, UserID: userID, Iat: now}
	rs.userIDs[userID] = tokenStr
	return tokenStr, nil
}

// consume removes the token and returns its metadata. A token can be used once.
func (rs *refreshStore) consume(token string, now time.Time, expiry time.Duration) (storedRefreshToken, error) {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	rt, ok := rs.tokens[token]
	if !ok {
		return storedRefreshToken{}, errors.ErrRefreshInvalid
	}
	delete(rs.tokens, token)
	delete(rs.userIDs, rt.UserID)

	if now.Sub(rt.Iat) > expiry {
		return storedRefreshToken{}, errors.ErrRefreshTokenExpired
	}
	return rt, nil
}

func (rs *refreshStore) revokeUser(userID string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	if token, ok := rs.userIDs[userID]; ok {
		delete(rs.tokens, token)
		delete(rs.userIDs, userID)
	}
}
