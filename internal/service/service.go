// Package service joins the API client, the session, and the response cache
// into the operations the CLI and dashboard call.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/auth"
	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/casing"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/logger"
	"github.com/julianstephens/pibble/internal/models"
)

// ReadMode picks where a read is answered from
type ReadMode int

const (
	// Live asks the server and refreshes the cache
	Live ReadMode = iota
	// LiveOrCached asks the server and falls back to the cache on connectivity errors
	LiveOrCached
	// CachedOnly never touches the network
	CachedOnly
)

type Service struct {
	client  *api.Client
	session *auth.Session
	cache   cache.Provider
	zone    *time.Location
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for cache timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithZone sets the reference zone due dates are entered in
func WithZone(zone *time.Location) Option {
	return func(s *Service) {
		s.zone = zone
	}
}

func New(client *api.Client, session *auth.Session, store cache.Provider, opts ...Option) *Service {
	if store == nil {
		store = cache.NewMemory()
	}
	s := &Service{
		client:  client,
		session: session,
		cache:   store,
		zone:    duedate.MustLoadDefaultZone(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Session() *auth.Session { return s.session }
func (s *Service) Zone() *time.Location   { return s.zone }
func (s *Service) Cache() cache.Provider  { return s.cache }
func (s *Service) Now() time.Time         { return s.now() }

// Groups is the caller's group list and when it was fetched
type Groups struct {
	Groups    []models.GroupSummary
	FetchedAt time.Time
	Offline   bool
}

// Snapshot is one group's state and when it was fetched
type Snapshot struct {
	State     *models.GroupState
	FetchedAt time.Time
	Offline   bool
}

func (s *Service) owner() string {
	id := s.session.Identity()
	if id == nil {
		return ""
	}
	return strings.ToLower(id.Email)
}

// Register creates an account and signs in with it
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*auth.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.session.Login(*resp); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return s.session.Identity(), nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*auth.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.session.Login(*resp); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return s.session.Identity(), nil
}

// LoginDemo signs in with a demo identity; no server call is made
func (s *Service) LoginDemo(email, name string) (*auth.Identity, error) {
	if err := s.session.LoginDemo(email, name); err != nil {
		return nil, err
	}
	return s.session.Identity(), nil
}

// Logout clears the session and everything cached for it
func (s *Service) Logout(ctx context.Context) error {
	if owner := s.owner(); owner != "" {
		if err := s.cache.InvalidatePrefix(ctx, cache.OwnerPrefix(owner)); err != nil {
			logger.Warn("Failed to clear cached responses", "error", err)
		}
	}
	return s.session.Logout()
}

func (s *Service) MyGroups(ctx context.Context, mode ReadMode) (*Groups, error) {
	key := cache.GroupsKey(s.owner())

	var liveErr error
	if mode != CachedOnly {
		resp, err := s.client.MyGroups(ctx)
		if err == nil {
			fetched := s.now()
			s.store(ctx, key, resp, fetched)
			return &Groups{Groups: resp.Groups, FetchedAt: fetched}, nil
		}
		if mode == Live || !errors.Is(err, api.ErrNetwork) {
			return nil, err
		}
		liveErr = err
	}

	var cached models.MyGroupsResponse
	fetched, err := s.load(ctx, key, &cached)
	if err != nil {
		return nil, fallbackError(liveErr, err)
	}
	if liveErr != nil {
		logger.Info("Serving cached groups", "error", liveErr)
	}
	return &Groups{Groups: cached.Groups, FetchedAt: fetched, Offline: true}, nil
}

func (s *Service) GroupState(ctx context.Context, groupID string, mode ReadMode) (*Snapshot, error) {
	key := cache.GroupStateKey(s.owner(), groupID)

	var liveErr error
	if mode != CachedOnly {
		state, err := s.client.GroupState(ctx, groupID)
		if err == nil {
			fetched := s.now()
			s.store(ctx, key, state, fetched)
			return &Snapshot{State: state, FetchedAt: fetched}, nil
		}
		if mode == Live || !errors.Is(err, api.ErrNetwork) {
			return nil, err
		}
		liveErr = err
	}

	var cached models.GroupState
	fetched, err := s.load(ctx, key, &cached)
	if err != nil {
		return nil, fallbackError(liveErr, err)
	}
	if liveErr != nil {
		logger.Info("Serving cached group state", "group", groupID, "error", liveErr)
	}
	return &Snapshot{State: &cached, FetchedAt: fetched, Offline: true}, nil
}

func (s *Service) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.GroupSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	group, err := s.client.CreateGroup(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.GroupsKey(s.owner()))
	return group, nil
}

func (s *Service) JoinGroup(ctx context.Context, req models.JoinGroupRequest) (*models.GroupSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	group, err := s.client.JoinGroup(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.GroupsKey(s.owner()))
	return group, nil
}

// TaskInput is a task as the user typed it; Due is a reference-zone wall clock
type TaskInput struct {
	Title   string
	Type    models.TaskType
	Due     string
	Penalty int
}

func (s *Service) CreateTask(ctx context.Context, groupID string, in TaskInput) (*models.TaskOut, error) {
	if strings.TrimSpace(in.Due) == "" {
		return nil, duedate.ErrDueRequired
	}
	due, err := duedate.Normalize(in.Due, s.zone)
	if err != nil {
		return nil, err
	}
	req := models.CreateTaskRequest{Title: in.Title, Type: in.Type, DueAt: due, Penalty: in.Penalty}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out, err := s.client.CreateTask(ctx, groupID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.GroupStateKey(s.owner(), groupID))
	return out, nil
}

// TaskEdit carries the fields being changed; Due is a reference-zone wall clock
type TaskEdit struct {
	Title   *string
	Type    *models.TaskType
	Due     *string
	Penalty *int
}

func (s *Service) UpdateTask(ctx context.Context, groupID, taskID string, edit TaskEdit) (*models.TaskOut, error) {
	req := models.UpdateTaskRequest{Title: edit.Title, Type: edit.Type, Penalty: edit.Penalty}
	if edit.Due != nil {
		due, err := duedate.Normalize(*edit.Due, s.zone)
		if err != nil {
			return nil, err
		}
		req.DueAt = &due
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out, err := s.client.UpdateTask(ctx, taskID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.GroupStateKey(s.owner(), groupID))
	return out, nil
}

func (s *Service) DeleteTask(ctx context.Context, groupID, taskID string) error {
	if err := s.client.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.invalidate(ctx, cache.GroupStateKey(s.owner(), groupID))
	return nil
}

// CompleteTask sets the caller's status on a task, optionally with a grade
func (s *Service) CompleteTask(ctx context.Context, groupID, taskID string, req models.CompleteTaskRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.client.CompleteTask(ctx, taskID, req); err != nil {
		return err
	}
	s.invalidate(ctx, cache.GroupStateKey(s.owner(), groupID))
	return nil
}

func (s *Service) Nudge(ctx context.Context, groupID string, req models.NudgeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.client.SendNudge(ctx, groupID, req); err != nil {
		return err
	}
	s.invalidate(ctx, cache.GroupStateKey(s.owner(), groupID))
	return nil
}

func (s *Service) Health(ctx context.Context) (map[string]any, error) {
	return s.client.Health(ctx)
}

// ClearCache drops every cached response for every identity
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *Service) store(ctx context.Context, key string, v any, fetched time.Time) {
	body, err := casing.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode response for cache", "key", key, "error", err)
		return
	}
	if err := s.cache.Put(ctx, key, body, fetched); err != nil {
		logger.Warn("Failed to cache response", "key", key, "error", err)
	}
}

func (s *Service) load(ctx context.Context, key string, v any) (time.Time, error) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	if err := entry.Decode(v); err != nil {
		return time.Time{}, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return entry.FetchedAt, nil
}

// fallbackError keeps the network failure visible when the cache has nothing either
func fallbackError(liveErr, cacheErr error) error {
	if liveErr != nil && errors.Is(cacheErr, cache.ErrMiss) {
		return liveErr
	}
	return cacheErr
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate cache", "keys", keys, "error", err)
	}
}
