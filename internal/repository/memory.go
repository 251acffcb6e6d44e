package repository

import (
	"context"
	"sync"
	"time"

	"github.com/usersvc/usersvc/internal/model"
)

// MemoryStore is an in-process UserStore. The mutex plays the role of the
// database's unique constraints: the existence check and the insert happen
// under one lock.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	users      []*model.User
	byID       map[int64]*model.User
	byEmail    map[string]int64
	byUsername map[string]int64
	now        func() time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[int64]*model.User),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
		now:        time.Now,
	}
}

// CreateUser inserts a new user, rejecting a taken email or username.
func (m *MemoryStore) CreateUser(ctx context.Context, username, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return nil, &DuplicateKeyError{Field: FieldEmail}
	}
	if _, ok := m.byUsername[username]; ok {
		return nil, &DuplicateKeyError{Field: FieldUsername}
	}

	m.nextID++
	user := &model.User{
		ID:        m.nextID,
		Username:  username,
		Email:     email,
		CreatedAt: m.now().UTC(),
	}

	m.users = append(m.users, user)
	m.byID[user.ID] = user
	m.byEmail[email] = user.ID
	m.byUsername[username] = user.ID

	copied := *user
	return &copied, nil
}

// GetUserByID retrieves a user by their ID.
func (m *MemoryStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// ListUsers returns every user in creation order.
func (m *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored users.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
