package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedemptionLock tracks the single in-flight redemption a member may have.
type RedemptionLock interface {
	// Acquire claims the member's slot for rewardID. It reports false when
	// another redemption already holds it. The returned token must be handed
	// back to Release.
	Acquire(ctx context.Context, userID string, rewardID int, ttl time.Duration) (string, bool, error)
	// Release frees the slot only if it is still held under token, so a
	// holder whose TTL ran out cannot drop a newer redemption's lock.
	Release(ctx context.Context, userID, token string) error
	// Holder returns the reward currently being redeemed, if any.
	Holder(ctx context.Context, userID string) (int, bool, error)
}

func redemptionKey(userID string) string {
	return "owaste:redemption:" + userID
}

// newLockToken returns "<reward id>:<uuid>". The token is also the stored
// value, so Holder can read the reward back from it.
func newLockToken(rewardID int) string {
	return strconv.Itoa(rewardID) + ":" + uuid.NewString()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`)

type redisRedemptionLock struct {
	client *redis.Client
}

// NewRedisRedemptionLock stores locks as expiring Redis keys.
func NewRedisRedemptionLock(client *redis.Client) RedemptionLock {
	return &redisRedemptionLock{client: client}
}

func (l *redisRedemptionLock) Acquire(ctx context.Context, userID string, rewardID int, ttl time.Duration) (string, bool, error) {
	token := newLockToken(rewardID)
	ok, err := l.client.SetNX(ctx, redemptionKey(userID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (l *redisRedemptionLock) Release(ctx context.Context, userID, token string) error {
	return releaseScript.Run(ctx, l.client, []string{redemptionKey(userID)}, token).Err()
}

func (l *redisRedemptionLock) Holder(ctx context.Context, userID string) (int, bool, error) {
	val, err := l.client.Get(ctx, redemptionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	raw, _, _ := strings.Cut(val, ":")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("redemption lock value %q: %w", val, err)
	}
	return id, true, nil
}

type heldRedemption struct {
	rewardID  int
	token     string
	expiresAt time.Time
}

// MemoryRedemptionLock is the in-process RedemptionLock.
type MemoryRedemptionLock struct {
	mu   sync.Mutex
	held map[string]heldRedemption
	now  func() time.Time
}

// NewMemoryRedemptionLock creates an empty lock table.
func NewMemoryRedemptionLock() *MemoryRedemptionLock {
	return &MemoryRedemptionLock{held: make(map[string]heldRedemption), now: time.Now}
}

func (l *MemoryRedemptionLock) Acquire(_ context.Context, userID string, rewardID int, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.held[userID]; ok && now.Before(h.expiresAt) {
		return "", false, nil
	}
	token := newLockToken(rewardID)
	l.held[userID] = heldRedemption{rewardID: rewardID, token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *MemoryRedemptionLock) Release(_ context.Context, userID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[userID]; ok && h.token == token {
		delete(l.held, userID)
	}
	return nil
}

func (l *MemoryRedemptionLock) Holder(_ context.Context, userID string) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.held[userID]
	if !ok || !l.now().Before(h.expiresAt) {
		return 0, false, nil
	}
	return h.rewardID, true, nil
}
