package devserver

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"mops-cli/internal/api"
	"mops-cli/internal/model"
)

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := CampaignQuery{
		Search: r.URL.Query().Get("search"),
		Sort:   strings.TrimSpace(r.URL.Query().Get("sort")),
	}
	var ok bool
	if q.Page, ok = intParam(r, "page", 1); !ok {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	if q.Limit, ok = intParam(r, "limit", defaultLimit); !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		st, err := model.ParseCampaignStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q.Statuses = append(q.Statuses, st)
	}

	cs, meta, err := s.db.ListCampaigns(r.Context(), r.PathValue("orgId"), q)
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{OK: true, Data: cs, Pagination: &meta})
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.db.GetCampaign(r.Context(), r.PathValue("orgId"), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func checkName(field, v string, max int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return field + " is required"
	}
	if utf8.RuneCountInString(v) > max {
		return field + " is too long"
	}
	return ""
}

func checkDates(start, target *time.Time) string {
	if start != nil && target != nil && target.Before(*start) {
		return "targetDate must not be before startDate"
	}
	return ""
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in api.CampaignInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := checkName("name", in.Name, 200); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := checkDates(in.StartDate, in.TargetDate); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	now := s.db.now()
	c := model.Campaign{
		ID:          newRandomID("cmp"),
		OrgID:       r.PathValue("orgId"),
		Name:        strings.TrimSpace(in.Name),
		Summary:     in.Summary,
		Description: in.Description,
		Status:      model.CampaignDraft,
		Health:      model.HealthOnTrack,
		Priority:    model.PriorityNone,
		StartDate:   in.StartDate,
		TargetDate:  in.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var err error
	if in.Status != "" {
		if c.Status, err = model.ParseCampaignStatus(string(in.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Health != "" {
		if c.Health, err = model.ParseHealth(string(in.Health)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if c.Priority, err = model.ParsePriority(string(in.Priority)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if lead := strings.TrimSpace(in.LeadID); lead != "" {
		c.Lead = &model.UserRef{ID: lead}
	}

	ctx := r.Context()
	if err := s.db.PutCampaign(ctx, c); err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	if c.Lead != nil {
		m := model.Member{ID: newRandomID("mem"), CampaignID: c.ID, User: *c.Lead, Role: model.RoleLead}
		if err := s.db.PutMember(ctx, m); err != nil {
			s.writeStoreError(w, r, "Member", err)
			return
		}
	}
	out, err := s.db.GetCampaign(ctx, c.OrgID, c.ID)
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org, id := r.PathValue("orgId"), r.PathValue("id")
	c, err := s.db.Campaign(ctx, org, id)
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	var in api.CampaignUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Name != nil {
		if msg := checkName("name", *in.Name, 200); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Summary != nil {
		c.Summary = *in.Summary
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Status != nil {
		if c.Status, err = model.ParseCampaignStatus(string(*in.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Health != nil {
		if c.Health, err = model.ParseHealth(string(*in.Health)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Priority != nil {
		if c.Priority, err = model.ParsePriority(string(*in.Priority)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.StartDate != nil {
		c.StartDate = in.StartDate
	}
	if in.TargetDate != nil {
		c.TargetDate = in.TargetDate
	}
	if in.ClearStartDate {
		c.StartDate = nil
	}
	if in.ClearTargetDate {
		c.TargetDate = nil
	}
	if msg := checkDates(c.StartDate, c.TargetDate); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.LeadID != nil {
		if lead := strings.TrimSpace(*in.LeadID); lead == "" {
			c.Lead = nil
		} else {
			c.Lead = &model.UserRef{ID: lead}
		}
	}
	c.UpdatedAt = s.db.now()
	if err := s.db.PutCampaign(ctx, c); err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	out, err := s.db.GetCampaign(ctx, org, id)
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteCampaign(r.Context(), r.PathValue("orgId"), r.PathValue("id")); err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// campaignFor resolves the {orgId}/{id} pair, writing a 404 when it does not exist.
func (s *Server) campaignFor(w http.ResponseWriter, r *http.Request) (model.Campaign, bool) {
	c, err := s.db.Campaign(r.Context(), r.PathValue("orgId"), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, "Campaign", err)
		return model.Campaign{}, false
	}
	return c, true
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	ts, err := s.db.ListTasks(r.Context(), c.ID)
	if err != nil {
		s.writeStoreError(w, r, "Task", err)
		return
	}
	writeData(w, http.StatusOK, ts)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	var in api.TaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := checkName("title", in.Title, 300); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	ctx := r.Context()
	now := s.db.now()
	t := model.Task{
		ID:             newRandomID("tsk"),
		CampaignID:     c.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Status:         model.TaskTodo,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	var err error
	if in.Status != "" {
		if t.Status, err = model.ParseTaskStatus(string(in.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if t.Priority, err = model.ParsePriority(string(in.Priority)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if a := strings.TrimSpace(in.AssigneeID); a != "" {
		t.Assignee = &model.UserRef{ID: a}
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		writeError(w, http.StatusBadRequest, "estimatedHours must not be negative")
		return
	}
	if in.ParentTaskID != nil && *in.ParentTaskID != "" {
		parent, err := s.db.GetTask(ctx, c.ID, *in.ParentTaskID)
		if err != nil {
			s.writeStoreError(w, r, "Parent task", err)
			return
		}
		if parent.IsSubtask() {
			writeError(w, http.StatusBadRequest, "Subtasks cannot have subtasks")
			return
		}
		pid := parent.ID
		t.ParentTaskID = &pid
	}
	if err := s.db.PutTask(ctx, t); err != nil {
		s.writeStoreError(w, r, "Task", err)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	t, err := s.db.GetTask(ctx, c.ID, r.PathValue("taskId"))
	if err != nil {
		s.writeStoreError(w, r, "Task", err)
		return
	}
	var in api.TaskUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Title != nil {
		if msg := checkName("title", *in.Title, 300); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		if t.Status, err = model.ParseTaskStatus(string(*in.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Priority != nil {
		if t.Priority, err = model.ParsePriority(string(*in.Priority)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.AssigneeID != nil {
		if a := strings.TrimSpace(*in.AssigneeID); a == "" {
			t.Assignee = nil
		} else {
			t.Assignee = &model.UserRef{ID: a}
		}
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.ClearDueDate {
		t.DueDate = nil
	}
	if in.EstimatedHours != nil {
		if *in.EstimatedHours < 0 {
			writeError(w, http.StatusBadRequest, "estimatedHours must not be negative")
			return
		}
		t.EstimatedHours = in.EstimatedHours
	}
	t.UpdatedAt = s.db.now()
	if err := s.db.PutTask(ctx, t); err != nil {
		s.writeStoreError(w, r, "Task", err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteTask(r.Context(), c.ID, r.PathValue("taskId")); err != nil {
		s.writeStoreError(w, r, "Task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	ms, err := s.db.ListMembers(r.Context(), c.ID)
	if err != nil {
		s.writeStoreError(w, r, "Member", err)
		return
	}
	writeData(w, http.StatusOK, ms)
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	ls, err := s.db.ListLabels(r.Context(), c.ID)
	if err != nil {
		s.writeStoreError(w, r, "Label", err)
		return
	}
	writeData(w, http.StatusOK, ls)
}

func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	c, ok := s.campaignFor(w, r)
	if !ok {
		return
	}
	ms, err := s.db.ListMilestones(r.Context(), c.ID)
	if err != nil {
		s.writeStoreError(w, r, "Milestone", err)
		return
	}
	writeData(w, http.StatusOK, ms)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	from, ok := timeParam(r, "from")
	if !ok {
		writeError(w, http.StatusBadRequest, "from must be an RFC3339 timestamp")
		return
	}
	to, ok := timeParam(r, "to")
	if !ok {
		writeError(w, http.StatusBadRequest, "to must be an RFC3339 timestamp")
		return
	}
	ss, err := s.db.ListSchedules(r.Context(), r.PathValue("orgId"), from, to)
	if err != nil {
		s.writeStoreError(w, r, "Schedule", err)
		return
	}
	writeData(w, http.StatusOK, ss)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var in api.ScheduleInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.ContentID) == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}
	if in.ScheduledAt.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduledAt is required")
		return
	}
	ctx := r.Context()
	content, err := s.db.GetContent(ctx, in.ContentID)
	if err != nil {
		s.writeStoreError(w, r, "Content", err)
		return
	}
	if _, err := s.db.Campaign(ctx, r.PathValue("orgId"), content.CampaignID); err != nil {
		s.writeStoreError(w, r, "Content", err)
		return
	}
	sc := model.Schedule{
		ID:          newRandomID("sch"),
		ContentID:   content.ID,
		CampaignID:  content.CampaignID,
		Title:       content.Title,
		ScheduledAt: in.ScheduledAt.UTC(),
		Status:      model.ScheduleScheduled,
	}
	if err := s.db.PutSchedule(ctx, sc); err != nil {
		s.writeStoreError(w, r, "Schedule", err)
		return
	}
	writeData(w, http.StatusCreated, sc)
}
