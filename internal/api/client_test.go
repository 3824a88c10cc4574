package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/api/apitest"
	"github.com/julianstephens/pibble/internal/models"
)

// fakeCreds is an in-memory CredentialSource
type fakeCreds struct {
	mu          sync.Mutex
	creds       api.Credentials
	invalidated int
}

func (f *fakeCreds) Credentials() api.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

func (f *fakeCreds) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.creds = api.Credentials{}
}

func newBackend(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	return srv
}

func demoClient(srv *apitest.Server, email string) (*api.Client, *fakeCreds) {
	creds := &fakeCreds{creds: api.Credentials{DemoEmail: email}}
	return api.New(srv.URL+"/", creds), creds
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	srv := newBackend(t)
	creds := &fakeCreds{}
	client := api.New(srv.URL, creds)
	ctx := context.Background()

	reg, err := client.Register(ctx, models.RegisterRequest{Email: "ana@example.com", DisplayName: "Ana", Password: "Secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "Ana", reg.User.DisplayName)

	sent := srv.LastRequest()
	assert.Empty(t, sent.Header.Get("Authorization"), "auth endpoints never carry credentials")
	var wire map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &wire))
	assert.Contains(t, wire, "display_name")
	assert.NotContains(t, wire, "displayName")

	login, err := client.Login(ctx, models.LoginRequest{Email: "ana@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, "bearer", login.TokenType)
}

func TestLoginFailureDoesNotInvalidate(t *testing.T) {
	srv := newBackend(t)
	creds := &fakeCreds{creds: api.Credentials{Token: "keep-me"}}
	client := api.New(srv.URL, creds)

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Zero(t, creds.invalidated)
}

func TestValidationDetailList(t *testing.T) {
	srv := newBackend(t)
	client := api.New(srv.URL, &fakeCreds{})

	_, err := client.Register(context.Background(), models.RegisterRequest{Email: "a@b.co", DisplayName: "A", Password: "short"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrValidation))
	assert.False(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "String should have at least 8 characters", err.Error())

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestMissingCredentialsFailLocally(t *testing.T) {
	srv := newBackend(t)
	client := api.New(srv.URL, &fakeCreds{})

	_, err := client.MyGroups(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Empty(t, srv.Requests(), "no request should reach the server")
}

func TestHealthWithoutCredentials(t *testing.T) {
	srv := newBackend(t)
	client := api.New(srv.URL, nil)

	out, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestDemoHeadersAndGroupFlow(t *testing.T) {
	srv := newBackend(t)
	client, _ := demoClient(srv, "ana@example.com")
	ctx := context.Background()

	group, err := client.CreateGroup(ctx, models.CreateGroupRequest{
		ClassCode: "CS 101", Term: "Fall 2026", Mode: models.GroupModeFriend, GroupName: "Buddies", InitialHealth: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS 101", group.Class.Code)
	assert.NotEmpty(t, group.InviteCode)
	assert.True(t, group.IsCreator)

	sent := srv.LastRequest()
	assert.Equal(t, "ana@example.com", sent.Header.Get("X-Demo-Email"))
	assert.NotEmpty(t, sent.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", sent.Header.Get("Accept"))

	ben, _ := demoClient(srv, "ben@example.com")
	joined, err := ben.JoinGroup(ctx, models.JoinGroupRequest{InviteCode: group.InviteCode})
	require.NoError(t, err)
	assert.Equal(t, group.ID, joined.ID)
	assert.Equal(t, models.GroupRoleStudent, joined.Role)

	mine, err := ben.MyGroups(ctx)
	require.NoError(t, err)
	require.Len(t, mine.Groups, 1)
	assert.Equal(t, "Buddies", mine.Groups[0].Name)
	require.NotNil(t, mine.Groups[0].PetHealth)
	assert.Equal(t, 50, *mine.Groups[0].PetHealth)
}

func TestTaskLifecycle(t *testing.T) {
	srv := newBackend(t)
	client, _ := demoClient(srv, "ana@example.com")
	ctx := context.Background()

	group, err := client.CreateGroup(ctx, models.CreateGroupRequest{
		ClassCode: "MATH 2", Term: "Spring", Mode: models.GroupModeFriend, GroupName: "Calc", InitialHealth: 100,
	})
	require.NoError(t, err)

	created, err := client.CreateTask(ctx, group.ID, models.CreateTaskRequest{
		Title: "Problem set 1", Type: models.TaskTypeAssignment, DueAt: "2026-03-08T17:00:00.000Z", Penalty: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, group.ID, created.GroupID)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(srv.LastRequest().Body, &wire))
	assert.Equal(t, "2026-03-08T17:00:00.000Z", wire["due_at"])

	title := "Problem set 1 (revised)"
	updated, err := client.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, http.MethodPatch, srv.LastRequest().Method)

	pct := 93
	require.NoError(t, client.CompleteTask(ctx, created.ID, models.CompleteTaskRequest{Status: models.TaskStatusDone, GradePercent: &pct}))

	state, err := client.GroupState(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, state.Tasks, 1)
	task := state.Tasks[0]
	assert.Equal(t, models.TaskStatusDone, task.MyStatus)
	require.NotNil(t, task.MyGradePercent)
	assert.Equal(t, 93, *task.MyGradePercent)
	assert.Equal(t, 1, task.Stats.DoneCount)
	assert.NotEmpty(t, state.RecentEvents)
	assert.Equal(t, models.EventTaskCompleted, state.RecentEvents[0].Type)
	require.NotNil(t, state.Viewer)
	assert.True(t, state.CanCreateTasks())
	assert.NotEmpty(t, state.Leaderboard)

	require.NoError(t, client.DeleteTask(ctx, created.ID))
	state, err = client.GroupState(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Tasks)
}

func TestNudge(t *testing.T) {
	srv := newBackend(t)
	ana, _ := demoClient(srv, "ana@example.com")
	ben, _ := demoClient(srv, "ben@example.com")
	ctx := context.Background()

	group, err := ana.CreateGroup(ctx, models.CreateGroupRequest{ClassCode: "X", Term: "T", Mode: models.GroupModeFriend, GroupName: "G", InitialHealth: 10})
	require.NoError(t, err)
	_, err = ben.JoinGroup(ctx, models.JoinGroupRequest{InviteCode: group.InviteCode})
	require.NoError(t, err)

	state, err := ana.GroupState(ctx, group.ID)
	require.NoError(t, err)
	var benID string
	for _, m := range state.Members() {
		if m.DisplayName == "ben" {
			benID = m.ID
		}
	}
	require.NotEmpty(t, benID)

	msg := "study!"
	resp, err := ana.SendNudge(ctx, group.ID, models.NudgeRequest{ToUserID: benID, Message: &msg})
	require.NoError(t, err)
	assert.True(t, resp.OK)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(srv.LastRequest().Body, &wire))
	assert.Equal(t, benID, wire["to_user_id"])
}

func TestUnauthorizedInvalidatesCredentials(t *testing.T) {
	srv := newBackend(t)
	creds := &fakeCreds{creds: api.Credentials{Token: "bogus.token.value"}}
	client := api.New(srv.URL, creds)

	_, err := client.MyGroups(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, 1, creds.invalidated)
	assert.True(t, creds.Credentials().Empty())

	requests := srv.Requests()
	require.Len(t, requests, 1, "the request must not be retried")
	assert.Equal(t, "Bearer bogus.token.value", requests[0].Header.Get("Authorization"))
}

func TestExpiredIssuedToken(t *testing.T) {
	srv := newBackend(t)
	srv.SeedUser("ana@example.com", "Ana", "Secret123")
	token := srv.IssueToken("id", "ana@example.com", -time.Minute)
	creds := &fakeCreds{creds: api.Credentials{Token: token}}

	_, err := api.New(srv.URL, creds).MyGroups(context.Background())
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, 1, creds.invalidated)
}

func TestServerErrorMessage(t *testing.T) {
	srv := newBackend(t)
	client, creds := demoClient(srv, "ana@example.com")
	srv.FailNext("/groups/my", http.StatusInternalServerError)

	_, err := client.MyGroups(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, api.ErrValidation))
	assert.False(t, errors.Is(err, api.ErrNetwork))
	assert.Equal(t, "injected failure 500", err.Error())
	assert.Zero(t, creds.invalidated)
}

func TestFallbackMessageWithoutDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	t.Cleanup(ts.Close)

	client := api.New(ts.URL, &fakeCreds{creds: api.Credentials{DemoEmail: "a@b.co"}})
	_, err := client.MyGroups(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Request failed (418)", err.Error())
	assert.True(t, errors.Is(err, api.ErrValidation))
}

func TestNetworkErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"groups": [`))
	}))
	t.Cleanup(ts.Close)
	creds := &fakeCreds{creds: api.Credentials{DemoEmail: "a@b.co"}}

	_, err := api.New(ts.URL, creds).MyGroups(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNetwork), "unparsable body is a network error")

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = api.New(closed.URL, creds).MyGroups(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNetwork))
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.Status)
}

func TestContextCancellation(t *testing.T) {
	srv := newBackend(t)
	client, _ := demoClient(srv, "ana@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.MyGroups(ctx)
	assert.True(t, errors.Is(err, api.ErrNetwork))
}

func TestBaseURLTrimmed(t *testing.T) {
	client := api.New("http://example.test///", nil)
	assert.Equal(t, "http://example.test", client.BaseURL())
}
