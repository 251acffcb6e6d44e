// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/usersvc/usersvc/internal/cache"
	"github.com/usersvc/usersvc/internal/metrics"
	"github.com/usersvc/usersvc/internal/model"
	"github.com/usersvc/usersvc/internal/repository"
)

// Service errors.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrDuplicateUser  = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
)

// UserCache is the optional read-through cache for single-user lookups.
type UserCache interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// EventPublisher receives successfully created users.
type EventPublisher interface {
	PublishUserCreated(user *model.User)
}

// UserService handles user registry business logic.
type UserService struct {
	store     repository.UserStore
	cache     UserCache
	publisher EventPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// UserServiceDeps lists UserService collaborators. Only Store is required.
type UserServiceDeps struct {
	Store     repository.UserStore
	Cache     UserCache
	Publisher EventPublisher
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(deps UserServiceDeps) *UserService {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:     deps.Store,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		metrics:   recorder,
		logger:    logger.With("component", "service.user"),
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Username string
	Email    string
}

// Normalize trims surrounding whitespace from both fields.
func (in CreateUserInput) Normalize() CreateUserInput {
	return CreateUserInput{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
	}
}

// Validate reports ErrInvalidPayload unless both fields are non-empty,
// valid UTF-8 and free of NUL bytes, which PostgreSQL TEXT cannot store.
func (in CreateUserInput) Validate() error {
	if !validField(in.Username) || !validField(in.Email) {
		return ErrInvalidPayload
	}
	return nil
}

func validField(s string) bool {
	return s != "" && utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// CreateUser validates input and stores a new user.
// A taken username or email returns an error matching ErrDuplicateUser
// that also wraps the store's *repository.DuplicateKeyError.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		s.metrics.IncUserRejected(metrics.ReasonInvalidPayload)
		return nil, err
	}

	start := time.Now()
	user, err := s.store.CreateUser(ctx, input.Username, input.Email)
	s.metrics.ObserveStoreDuration(time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.metrics.IncUserRejected(metrics.ReasonDuplicate)
			return nil, fmt.Errorf("%w: %w", ErrDuplicateUser, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			s.logger.Warn("failed to cache user", "user_id", user.ID, "error", err)
		}
	}

	if s.publisher != nil {
		s.publisher.PublishUserCreated(user)
	}

	return user, nil
}

// ParseUserID parses a path identifier. Anything that is not a positive
// base-10 integer is reported as ErrUserNotFound.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUserNotFound
	}
	return id, nil
}

// GetUser looks up a user by the raw identifier taken from the request.
func (s *UserService) GetUser(ctx context.Context, rawID string) (*model.User, error) {
	id, err := ParseUserID(rawID)
	if err != nil {
		s.metrics.IncUserLookup(metrics.LookupNotFound)
		return nil, err
	}

	if user := s.cachedUser(ctx, id); user != nil {
		s.metrics.IncUserLookup(metrics.LookupFound)
		return user, nil
	}

	start := time.Now()
	user, err := s.store.GetUserByID(ctx, id)
	s.metrics.ObserveStoreDuration(time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncUserLookup(metrics.LookupNotFound)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	s.metrics.IncUserLookup(metrics.LookupFound)

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			s.logger.Warn("failed to cache user", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// ListUsers returns all users in creation order.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	start := time.Now()
	users, err := s.store.ListUsers(ctx)
	s.metrics.ObserveStoreDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// cachedUser returns the cached user or nil. Cache failures degrade to a store read.
func (s *UserService) cachedUser(ctx context.Context, id int64) *model.User {
	if s.cache == nil {
		return nil
	}

	user, err := s.cache.GetUser(ctx, id)
	if err == nil {
		s.metrics.IncUserCacheHit()
		return user
	}

	s.metrics.IncUserCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("user cache read failed", "user_id", id, "error", err)
	}
	return nil
}
