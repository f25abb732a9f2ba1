package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var decoyPlaintext = []byte("garage-be decoy password")

// Hasher hashes and verifies passwords with bcrypt on a bounded pool, so
// concurrent logins and signups cannot starve the rest of the server.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	decoy string
}

// NewHasher returns a hasher running at most workers bcrypt operations at
// once. workers <= 0 means GOMAXPROCS; a cost outside bcrypt's range means bcrypt.DefaultCost.
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	decoy, err := bcrypt.GenerateFromPassword(decoyPlaintext, cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt decoy digest: %v", err))
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(workers)), decoy: string(decoy)}
}

// Decoy returns a digest at the hasher's cost for login to verify against
// when no account matches, so a miss costs as much as a wrong password.
func (h *Hasher) Decoy() string {
	return h.decoy
}

// Hash returns a salted, self-describing bcrypt digest of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash worker: %w", err)
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests and a
// cancelled ctx report false.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
