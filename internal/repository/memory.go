package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/owaste/rewards-service/internal/domain"
)

type memoryMember struct {
	user    domain.User
	account *domain.PointsAccount
}

// MemoryStore keeps members and their ledgers in process memory. It
// implements both UserRepository and LedgerRepository so balance moves and
// ledger appends share one lock.
type MemoryStore struct {
	mu      sync.Mutex
	members map[string]*memoryMember
	byEmail map[string]string
	ledger  map[string][]domain.Transaction
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members: make(map[string]*memoryMember),
		byEmail: make(map[string]string),
		ledger:  make(map[string][]domain.Transaction),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrEmailTaken
	}
	account, err := domain.NewPointsAccount(user.Points)
	if err != nil {
		return err
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.members[user.ID] = &memoryMember{user: *user, account: account}
	s.byEmail[key] = user.ID
	return nil
}

func (s *MemoryStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	newKey := emailKey(user.Email)
	oldKey := emailKey(m.user.Email)
	if newKey != oldKey {
		if _, taken := s.byEmail[newKey]; taken {
			return ErrEmailTaken
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = user.ID
	}
	m.user.Name = user.Name
	m.user.Email = user.Email
	m.user.PasswordHash = user.PasswordHash
	m.user.Status = user.Status
	m.user.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.snapshot(m), nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.snapshot(s.members[id]), nil
}

func (s *MemoryStore) snapshot(m *memoryMember) *domain.User {
	u := m.user
	u.Points = m.account.Balance()
	return &u
}

func (s *MemoryStore) Record(_ context.Context, txn *domain.Transaction) (int, error) {
	if txn.Amount == 0 {
		return 0, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[txn.UserID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	var err error
	if txn.Amount > 0 {
		err = m.account.Credit(txn.Amount)
	} else {
		err = m.account.Debit(-txn.Amount)
	}
	if err != nil {
		return m.account.Balance(), err
	}
	m.user.UpdatedAt = s.now()
	s.appendLocked(txn)
	return m.account.Balance(), nil
}

func (s *MemoryStore) Settle(_ context.Context, userID, txnID string, status domain.TransactionStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	entries := s.ledger[userID]
	for i := range entries {
		if entries[i].ID != txnID {
			continue
		}
		e := &entries[i]
		if e.Status == domain.StatusFailed {
			return m.account.Balance(), nil
		}
		if status == domain.StatusFailed && e.Amount < 0 {
			if err := m.account.Credit(-e.Amount); err != nil {
				return m.account.Balance(), err
			}
			m.user.UpdatedAt = s.now()
		}
		e.Status = status
		return m.account.Balance(), nil
	}
	return m.account.Balance(), domain.ErrNotFound
}

func (s *MemoryStore) Append(_ context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[txn.UserID]; !ok {
		return domain.ErrNotFound
	}
	s.appendLocked(txn)
	return nil
}

func (s *MemoryStore) appendLocked(txn *domain.Transaction) {
	if txn.ID == "" {
		txn.ID = NewTransactionID()
	}
	if txn.OccurredAt.IsZero() {
		txn.OccurredAt = s.now()
	}
	s.ledger[txn.UserID] = append(s.ledger[txn.UserID], *txn)
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	entries := append([]domain.Transaction(nil), s.ledger[userID]...)
	s.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	return entries, nil
}
