package models

type EventType string

const (
	EventGroupCreated  EventType = "GROUP_CREATED"
	EventMemberJoined  EventType = "MEMBER_JOINED"
	EventTaskCreated   EventType = "TASK_CREATED"
	EventTaskCompleted EventType = "TASK_COMPLETED"
	EventTaskMissed    EventType = "TASK_MISSED"
	EventPetDamaged    EventType = "PET_DAMAGED"
	EventNudgeSent     EventType = "NUDGE_SENT"
)

type UserRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type GroupHeader struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Mode  GroupMode `json:"mode"`
	Class ClassRef  `json:"class"`
}

type EventOut struct {
	Type      EventType `json:"type"`
	TaskID    *string   `json:"taskId,omitempty"`
	Delta     *int      `json:"delta,omitempty"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt string    `json:"createdAt"`
	Actor     *UserRef  `json:"actor,omitempty"`
	Target    *UserRef  `json:"target,omitempty"`
}

type LeaderboardEntry struct {
	User        UserRef `json:"user"`
	DoneCount   int     `json:"doneCount"`
	MissedCount int     `json:"missedCount"`
}

type Viewer struct {
	Role GroupRole `json:"role"`
}

type GroupState struct {
	Group        GroupHeader        `json:"group"`
	Pet          PetState           `json:"pet"`
	Tasks        []Task             `json:"tasks"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard,omitempty"`
	RecentEvents []EventOut         `json:"recentEvents"`
	Viewer       *Viewer            `json:"viewer,omitempty"`
}

// CanCreateTasks reports whether the viewer may add tasks to the group:
// anyone in a FRIEND group, only instructors otherwise.
func (s *GroupState) CanCreateTasks() bool {
	if s.Group.Mode == GroupModeFriend {
		return true
	}
	return s.Viewer != nil && s.Viewer.Role == GroupRoleInstructor
}

// ShowLeaderboard reports whether the leaderboard is shown for this group
func (s *GroupState) ShowLeaderboard() bool {
	return s.Group.Mode == GroupModeFriend && len(s.Leaderboard) > 0
}

// Recent returns at most limit events, newest first as sent by the server
func (s *GroupState) Recent(limit int) []EventOut {
	if limit < 0 || len(s.RecentEvents) <= limit {
		return s.RecentEvents
	}
	return s.RecentEvents[:limit]
}

// Members collects the distinct users known from the leaderboard and events
func (s *GroupState) Members() []UserRef {
	seen := make(map[string]bool)
	var out []UserRef
	add := func(u *UserRef) {
		if u == nil || u.ID == "" || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		out = append(out, *u)
	}
	for i := range s.Leaderboard {
		add(&s.Leaderboard[i].User)
	}
	for i := range s.RecentEvents {
		add(s.RecentEvents[i].Actor)
		add(s.RecentEvents[i].Target)
	}
	return out
}
