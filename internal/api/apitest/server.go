// Package apitest runs an in-memory ProtectPibble backend for tests.
//
// It speaks the same snake_case wire format as the real server, issues HS256
// tokens, accepts demo headers, and records every request it sees.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Recorded is one request as the server received it
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type user struct {
	ID          string
	Email       string
	DisplayName string
	Password    string
}

type membership struct {
	UserID string
	Role   string
}

type group struct {
	ID         string
	Name       string
	Mode       string
	InviteCode string
	ClassCode  string
	Term       string
	School     *string
	CreatorID  string
	PetHealth  int
	PetMax     int
	Members    []membership
	Events     []map[string]any
}

type task struct {
	ID      string
	GroupID string
	Title   string
	Type    string
	DueAt   string
	Penalty int
	Status  map[string]string // user id -> status
	Percent map[string]int
	Letter  map[string]string
}

// Server is a fake backend. All fields are guarded by mu.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	users    map[string]*user // by email
	groups   map[string]*group
	tasks    map[string]*task
	order    []string // task ids in creation order
	requests []Recorded
	failures map[string]int // path -> status for the next request
}

// New starts a fake backend. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		secret:   []byte("apitest-secret"),
		tokenTTL: time.Hour,
		users:    make(map[string]*user),
		groups:   make(map[string]*group),
		tasks:    make(map[string]*task),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/groups/my", s.handleMyGroups)
		r.Post("/groups", s.handleCreateGroup)
		r.Post("/groups/join", s.handleJoinGroup)
		r.Get("/groups/{groupID}/state", s.handleGroupState)
		r.Post("/groups/{groupID}/tasks", s.handleCreateTask)
		r.Post("/groups/{groupID}/nudges", s.handleNudge)
		r.Patch("/tasks/{taskID}", s.handleUpdateTask)
		r.Delete("/tasks/{taskID}", s.handleDeleteTask)
		r.Post("/tasks/{taskID}/complete", s.handleCompleteTask)
	})
	return r
}

// SetTokenTTL changes the lifetime of tokens issued from now on
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

// FailNext makes the next request to path fail with status
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// LastRequest returns the most recent request, or the zero value
func (s *Server) LastRequest() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

// IssueToken signs a token for email that expires after ttl
func (s *Server) IssueToken(userID, email string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: signing token: %v", err))
	}
	return signed
}

// SeedUser registers a user directly and returns its id
func (s *Server) SeedUser(email, displayName, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{ID: uuid.NewString(), Email: strings.ToLower(email), DisplayName: displayName, Password: password}
	s.users[u.Email] = u
	return u.ID
}

// SeedTask inserts a task into a group with a raw due value, which may be malformed
func (s *Server) SeedTask(groupID, title, taskType, dueAt string, penalty int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &task{
		ID: uuid.NewString(), GroupID: groupID, Title: title, Type: taskType, DueAt: dueAt, Penalty: penalty,
		Status: map[string]string{}, Percent: map[string]int{}, Letter: map[string]string{},
	}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return t.ID
}

// PetHealth reports a group's pet health
func (s *Server) PetHealth(groupID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[groupID]; ok {
		return g.PetHealth
	}
	return 0
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		status, fail := s.failures[r.URL.Path]
		delete(s.failures, r.URL.Path)
		s.mu.Unlock()

		if fail {
			writeError(w, status, fmt.Sprintf("injected failure %d", status))
			return
		}
		next.ServeHTTP(w, r)
	})
}
