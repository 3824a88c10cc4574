package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/pibble/internal/models"
)

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyGroups(ctx context.Context) (*models.MyGroupsResponse, error) {
	var out models.MyGroupsResponse
	if err := c.Do(ctx, http.MethodGet, "/groups/my", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.GroupSummary, error) {
	var out models.CreateGroupResponse
	if err := c.Do(ctx, http.MethodPost, "/groups", req, &out); err != nil {
		return nil, err
	}
	return &out.Group, nil
}

func (c *Client) JoinGroup(ctx context.Context, req models.JoinGroupRequest) (*models.GroupSummary, error) {
	var out models.JoinGroupResponse
	if err := c.Do(ctx, http.MethodPost, "/groups/join", req, &out); err != nil {
		return nil, err
	}
	return &out.Group, nil
}

func (c *Client) GroupState(ctx context.Context, groupID string) (*models.GroupState, error) {
	var out models.GroupState
	if err := c.Do(ctx, http.MethodGet, "/groups/"+url.PathEscape(groupID)+"/state", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, groupID string, req models.CreateTaskRequest) (*models.TaskOut, error) {
	var out models.TaskOut
	if err := c.Do(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, req models.UpdateTaskRequest) (*models.TaskOut, error) {
	var out models.TaskOut
	if err := c.Do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(taskID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.Do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, nil)
}

func (c *Client) CompleteTask(ctx context.Context, taskID string, req models.CompleteTaskRequest) error {
	return c.Do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/complete", req, nil)
}

func (c *Client) SendNudge(ctx context.Context, groupID string, req models.NudgeRequest) (*models.NudgeResponse, error) {
	var out models.NudgeResponse
	if err := c.Do(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/nudges", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the server. It needs no credentials.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
