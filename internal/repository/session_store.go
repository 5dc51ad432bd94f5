package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/owaste/rewards-service/internal/navigation"
)

// SessionStore holds per-member app shell state.
type SessionStore interface {
	View(ctx context.Context, userID string) (navigation.View, bool, error)
	SetView(ctx context.Context, userID string, view navigation.View) error
	Unread(ctx context.Context, userID string) (bool, error)
	SetUnread(ctx context.Context, userID string, unread bool) error
	Clear(ctx context.Context, userID string) error
}

func viewKey(userID string) string   { return "owaste:session:view:" + userID }
func unreadKey(userID string) string { return "owaste:session:unread:" + userID }

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore keeps session state in Redis.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) View(ctx context.Context, userID string) (navigation.View, bool, error) {
	val, err := s.client.Get(ctx, viewKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return navigation.View(val), true, nil
}

func (s *redisSessionStore) SetView(ctx context.Context, userID string, view navigation.View) error {
	return s.client.Set(ctx, viewKey(userID), string(view), 0).Err()
}

func (s *redisSessionStore) Unread(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, unreadKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisSessionStore) SetUnread(ctx context.Context, userID string, unread bool) error {
	if unread {
		return s.client.Set(ctx, unreadKey(userID), "1", 0).Err()
	}
	return s.client.Del(ctx, unreadKey(userID)).Err()
}

func (s *redisSessionStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, viewKey(userID), unreadKey(userID)).Err()
}

// MemorySessionStore is the in-process SessionStore.
type MemorySessionStore struct {
	mu     sync.Mutex
	views  map[string]navigation.View
	unread map[string]bool
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		views:  make(map[string]navigation.View),
		unread: make(map[string]bool),
	}
}

func (s *MemorySessionStore) View(_ context.Context, userID string) (navigation.View, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[userID]
	return v, ok, nil
}

func (s *MemorySessionStore) SetView(_ context.Context, userID string, view navigation.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[userID] = view
	return nil
}

func (s *MemorySessionStore) Unread(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[userID], nil
}

func (s *MemorySessionStore) SetUnread(_ context.Context, userID string, unread bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unread {
		s.unread[userID] = true
	} else {
		delete(s.unread, userID)
	}
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, userID)
	delete(s.unread, userID)
	return nil
}
