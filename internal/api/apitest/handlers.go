package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userKey struct{}

func nowWire() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000+00:00")
}

func readAll(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// authenticate resolves the caller from a bearer token or the demo headers.
// Demo users are created on first sight.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			u := s.userFromToken(strings.TrimPrefix(header, "Bearer "))
			if u == nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
			return
		}

		if email := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Demo-Email"))); email != "" {
			s.mu.Lock()
			u, ok := s.users[email]
			if !ok {
				name := r.Header.Get("X-Demo-Name")
				if name == "" {
					name, _, _ = strings.Cut(email, "@")
				}
				u = &user{ID: uuid.NewString(), Email: email, DisplayName: name}
				s.users[email] = u
			}
			s.mu.Unlock()
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
			return
		}

		writeError(w, http.StatusUnauthorized, "Not authenticated")
	})
}

func (s *Server) userFromToken(raw string) *user {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}
	email, _ := token.Claims.(jwt.MapClaims)["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[email]
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(userKey{}).(*user)
	return u
}

func (s *Server) authResponse(u *user) map[string]any {
	s.mu.Lock()
	ttl := s.tokenTTL
	s.mu.Unlock()
	return map[string]any{
		"access_token": s.IssueToken(u.ID, u.Email, ttl),
		"token_type":   "bearer",
		"user": map[string]any{
			"id":           u.ID,
			"email":        u.Email,
			"display_name": u.DisplayName,
		},
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if err := decode(r, &body); err != nil || body.Email == "" || body.DisplayName == "" {
		writeError(w, http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []string{"body"}, "msg": "Field required", "type": "missing"},
		})
		return
	}
	if len(body.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []string{"body", "password"}, "msg": "String should have at least 8 characters", "type": "string_too_short"},
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email already registered. Please login instead.")
		return
	}
	u := &user{ID: uuid.NewString(), Email: email, DisplayName: strings.TrimSpace(body.DisplayName), Password: body.Password}
	s.users[email] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, s.authResponse(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(body.Email))]
	s.mu.Unlock()
	if !ok || u.Password == "" || u.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, s.authResponse(u))
}

func (g *group) role(userID string) (string, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func (g *group) classRef() map[string]any {
	return map[string]any{"code": g.ClassCode, "term": g.Term, "school": g.School}
}

func (g *group) summary(userID string) map[string]any {
	role, _ := g.role(userID)
	return map[string]any{
		"id":             g.ID,
		"name":           g.Name,
		"mode":           g.Mode,
		"invite_code":    g.InviteCode,
		"role":           role,
		"class":          g.classRef(),
		"pet_health":     g.PetHealth,
		"pet_max_health": g.PetMax,
		"is_creator":     g.CreatorID == userID,
	}
}

func (s *Server) addEvent(g *group, eventType string, actor *user, extra map[string]any) {
	ev := map[string]any{
		"type":       eventType,
		"created_at": nowWire(),
	}
	if actor != nil {
		ev["actor"] = map[string]any{"id": actor.ID, "display_name": actor.DisplayName}
	}
	for k, v := range extra {
		ev[k] = v
	}
	g.Events = append([]map[string]any{ev}, g.Events...)
}

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	groups := make([]map[string]any, 0)
	for _, g := range s.groups {
		if _, ok := g.role(u.ID); ok {
			groups = append(groups, g.summary(u.ID))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		ClassCode     string  `json:"class_code"`
		Term          string  `json:"term"`
		School        *string `json:"school"`
		Mode          string  `json:"mode"`
		GroupName     string  `json:"group_name"`
		InitialHealth *int    `json:"initial_health"`
	}
	if err := decode(r, &body); err != nil || body.ClassCode == "" || body.GroupName == "" {
		writeError(w, http.StatusUnprocessableEntity, "class_code and group_name are required")
		return
	}
	if body.Mode != "FRIEND" && body.Mode != "INSTRUCTOR" {
		writeError(w, http.StatusUnprocessableEntity, "mode must be FRIEND or INSTRUCTOR")
		return
	}
	health := 100
	if body.InitialHealth != nil {
		health = *body.InitialHealth
	}

	role := "student"
	if body.Mode == "INSTRUCTOR" {
		role = "instructor"
	}
	g := &group{
		ID:         uuid.NewString(),
		Name:       body.GroupName,
		Mode:       body.Mode,
		InviteCode: strings.ToUpper(uuid.NewString()[:8]),
		ClassCode:  body.ClassCode,
		Term:       body.Term,
		School:     body.School,
		CreatorID:  u.ID,
		PetHealth:  health,
		PetMax:     health,
		Members:    []membership{{UserID: u.ID, Role: role}},
	}

	s.mu.Lock()
	s.groups[g.ID] = g
	s.addEvent(g, "GROUP_CREATED", u, nil)
	summary := g.summary(u.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"group": summary})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		InviteCode string `json:"invite_code"`
	}
	_ = decode(r, &body)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if strings.EqualFold(g.InviteCode, strings.TrimSpace(body.InviteCode)) {
			if _, ok := g.role(u.ID); !ok {
				g.Members = append(g.Members, membership{UserID: u.ID, Role: "student"})
				s.addEvent(g, "MEMBER_JOINED", u, nil)
			}
			writeJSON(w, http.StatusOK, map[string]any{"group": g.summary(u.ID)})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Invalid invite code")
}

// memberGroup loads a group the caller belongs to, writing the error response otherwise
func (s *Server) memberGroup(w http.ResponseWriter, groupID string, u *user) (*group, string, bool) {
	g, ok := s.groups[groupID]
	if !ok {
		writeError(w, http.StatusNotFound, "Group not found")
		return nil, "", false
	}
	role, member := g.role(u.ID)
	if !member {
		writeError(w, http.StatusForbidden, "Not a member of this group")
		return nil, "", false
	}
	return g, role, true
}

func (s *Server) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) handleGroupState(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	g, role, ok := s.memberGroup(w, chi.URLParam(r, "groupID"), u)
	if !ok {
		return
	}

	tasks := make([]map[string]any, 0)
	for _, id := range s.order {
		t := s.tasks[id]
		if t == nil || t.GroupID != g.ID {
			continue
		}
		status := t.Status[u.ID]
		if status == "" {
			status = "NOT_DONE"
		}
		done := 0
		for _, st := range t.Status {
			if st == "DONE" {
				done++
			}
		}
		entry := map[string]any{
			"id":        t.ID,
			"title":     t.Title,
			"type":      t.Type,
			"due_at":    t.DueAt,
			"penalty":   t.Penalty,
			"my_status": status,
			"stats":     map[string]any{"done_count": done, "total_count": len(g.Members)},
		}
		if letter, ok := t.Letter[u.ID]; ok {
			entry["my_grade_letter"] = letter
		}
		if pct, ok := t.Percent[u.ID]; ok {
			entry["my_grade_percent"] = pct
		}
		tasks = append(tasks, entry)
	}

	state := map[string]any{
		"group": map[string]any{
			"id":    g.ID,
			"name":  g.Name,
			"mode":  g.Mode,
			"class": g.classRef(),
		},
		"pet":           map[string]any{"name": "Pibble", "health": g.PetHealth, "max_health": g.PetMax},
		"tasks":         tasks,
		"recent_events": g.Events,
		"viewer":        map[string]any{"role": role},
	}
	if g.Mode == "FRIEND" {
		board := make([]map[string]any, 0, len(g.Members))
		for _, m := range g.Members {
			member := s.userByID(m.UserID)
			if member == nil {
				continue
			}
			done := 0
			for _, t := range s.tasks {
				if t.GroupID == g.ID && t.Status[m.UserID] == "DONE" {
					done++
				}
			}
			board = append(board, map[string]any{
				"user":         map[string]any{"id": member.ID, "display_name": member.DisplayName},
				"done_count":   done,
				"missed_count": 0,
			})
		}
		state["leaderboard"] = board
	}
	writeJSON(w, http.StatusOK, state)
}

func taskOut(t *task) map[string]any {
	return map[string]any{
		"id":       t.ID,
		"group_id": t.GroupID,
		"title":    t.Title,
		"type":     t.Type,
		"due_at":   t.DueAt,
		"penalty":  t.Penalty,
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		Title   string `json:"title"`
		Type    string `json:"type"`
		DueAt   string `json:"due_at"`
		Penalty *int   `json:"penalty"`
	}
	if err := decode(r, &body); err != nil || body.Title == "" || body.DueAt == "" {
		writeError(w, http.StatusUnprocessableEntity, "title and due_at are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, role, ok := s.memberGroup(w, chi.URLParam(r, "groupID"), u)
	if !ok {
		return
	}
	if g.Mode == "INSTRUCTOR" && role != "instructor" {
		writeError(w, http.StatusForbidden, "Only instructors can create tasks in this group")
		return
	}

	penalty := 1
	if body.Penalty != nil {
		penalty = *body.Penalty
	}
	t := &task{
		ID: uuid.NewString(), GroupID: g.ID, Title: body.Title, Type: body.Type, DueAt: body.DueAt, Penalty: penalty,
		Status: map[string]string{}, Percent: map[string]int{}, Letter: map[string]string{},
	}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	s.addEvent(g, "TASK_CREATED", u, map[string]any{"task_id": t.ID, "message": t.Title})

	writeJSON(w, http.StatusOK, taskOut(t))
}

// taskForMember loads a task in one of the caller's groups
func (s *Server) taskForMember(w http.ResponseWriter, r *http.Request, u *user) (*task, *group, string, bool) {
	t, ok := s.tasks[chi.URLParam(r, "taskID")]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return nil, nil, "", false
	}
	g, role, ok := s.memberGroup(w, t.GroupID, u)
	if !ok {
		return nil, nil, "", false
	}
	return t, g, role, true
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		Title   *string `json:"title"`
		Type    *string `json:"type"`
		DueAt   *string `json:"due_at"`
		Penalty *int    `json:"penalty"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, _, _, ok := s.taskForMember(w, r, u)
	if !ok {
		return
	}
	if body.Title != nil {
		t.Title = *body.Title
	}
	if body.Type != nil {
		t.Type = *body.Type
	}
	if body.DueAt != nil {
		t.DueAt = *body.DueAt
	}
	if body.Penalty != nil {
		t.Penalty = *body.Penalty
	}
	writeJSON(w, http.StatusOK, taskOut(t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _, _, ok := s.taskForMember(w, r, u)
	if !ok {
		return
	}
	delete(s.tasks, t.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		Status       string  `json:"status"`
		GradePercent *int    `json:"grade_percent"`
		GradeLetter  *string `json:"grade_letter"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, g, role, ok := s.taskForMember(w, r, u)
	if !ok {
		return
	}
	switch body.Status {
	case "DONE", "NOT_DONE":
	case "EXCUSED":
		if role != "instructor" {
			writeError(w, http.StatusForbidden, "Only instructors can excuse tasks")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	t.Status[u.ID] = body.Status
	delete(t.Percent, u.ID)
	delete(t.Letter, u.ID)
	if body.Status == "DONE" {
		if body.GradePercent != nil {
			t.Percent[u.ID] = *body.GradePercent
		}
		if body.GradeLetter != nil {
			t.Letter[u.ID] = *body.GradeLetter
		}
		s.addEvent(g, "TASK_COMPLETED", u, map[string]any{"task_id": t.ID, "message": t.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	var body struct {
		ToUserID string  `json:"to_user_id"`
		TaskID   *string `json:"task_id"`
		Message  *string `json:"message"`
	}
	if err := decode(r, &body); err != nil || body.ToUserID == "" {
		writeError(w, http.StatusUnprocessableEntity, "to_user_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, _, ok := s.memberGroup(w, chi.URLParam(r, "groupID"), u)
	if !ok {
		return
	}
	if body.ToUserID == u.ID {
		writeError(w, http.StatusBadRequest, "You cannot nudge yourself")
		return
	}
	if _, member := g.role(body.ToUserID); !member {
		writeError(w, http.StatusBadRequest, "Target user is not in this group")
		return
	}
	target := s.userByID(body.ToUserID)
	extra := map[string]any{"target": map[string]any{"id": target.ID, "display_name": target.DisplayName}}
	if body.TaskID != nil {
		extra["task_id"] = *body.TaskID
	}
	if body.Message != nil {
		extra["message"] = *body.Message
	}
	s.addEvent(g, "NUDGE_SENT", u, extra)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
