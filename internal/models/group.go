package models

import (
	"fmt"
	"strings"
)

type GroupMode string

const (
	GroupModeFriend     GroupMode = "FRIEND"
	GroupModeInstructor GroupMode = "INSTRUCTOR"
)

func (m GroupMode) Valid() bool {
	return m == GroupModeFriend || m == GroupModeInstructor
}

type GroupRole string

const (
	GroupRoleStudent    GroupRole = "student"
	GroupRoleInstructor GroupRole = "instructor"
)

type ClassRef struct {
	Code   string  `json:"code"`
	Term   string  `json:"term"`
	School *string `json:"school,omitempty"`
}

// Label renders the class as "CODE · TERM"
func (c ClassRef) Label() string {
	label := c.Code + " · " + c.Term
	if c.School != nil && *c.School != "" {
		label += " · " + *c.School
	}
	return label
}

type GroupSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Mode         GroupMode `json:"mode"`
	InviteCode   string    `json:"inviteCode"`
	Role         GroupRole `json:"role"`
	Class        ClassRef  `json:"class"`
	PetHealth    *int      `json:"petHealth,omitempty"`
	PetMaxHealth *int      `json:"petMaxHealth,omitempty"`
	IsCreator    bool      `json:"isCreator,omitempty"`
}

type MyGroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

type CreateGroupRequest struct {
	ClassCode     string    `json:"classCode"`
	Term          string    `json:"term"`
	School        *string   `json:"school,omitempty"`
	Mode          GroupMode `json:"mode"`
	GroupName     string    `json:"groupName"`
	InitialHealth int       `json:"initialHealth"`
}

func (r *CreateGroupRequest) Validate() error {
	r.ClassCode = strings.TrimSpace(r.ClassCode)
	r.Term = strings.TrimSpace(r.Term)
	r.GroupName = strings.TrimSpace(r.GroupName)
	if r.School != nil {
		school := strings.TrimSpace(*r.School)
		if school == "" {
			r.School = nil
		} else {
			r.School = &school
		}
	}

	if r.ClassCode == "" {
		return fmt.Errorf("class code cannot be empty")
	}
	if r.Term == "" {
		return fmt.Errorf("term cannot be empty")
	}
	if r.GroupName == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("mode must be FRIEND or INSTRUCTOR")
	}
	if r.InitialHealth < 1 || r.InitialHealth > 1000 {
		return fmt.Errorf("initial health must be between 1 and 1000")
	}
	return nil
}

type CreateGroupResponse struct {
	Group GroupSummary `json:"group"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (r *JoinGroupRequest) Validate() error {
	r.InviteCode = strings.ToUpper(strings.TrimSpace(r.InviteCode))
	if r.InviteCode == "" {
		return fmt.Errorf("invite code cannot be empty")
	}
	return nil
}

type JoinGroupResponse struct {
	Group GroupSummary `json:"group"`
}

type NudgeRequest struct {
	ToUserID string  `json:"toUserId"`
	TaskID   *string `json:"taskId,omitempty"`
	Message  *string `json:"message,omitempty"`
}

func (r *NudgeRequest) Validate() error {
	if strings.TrimSpace(r.ToUserID) == "" {
		return fmt.Errorf("nudge recipient cannot be empty")
	}
	return nil
}

type NudgeResponse struct {
	OK bool `json:"ok"`
}
