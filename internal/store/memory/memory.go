// Package memory is a process-local store used for development and tests.
// A single RWMutex serializes writers, so toggles and code allocation never
// race.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"auditdesk/pkg/types"
)

const firstClientCode = 1001

type Store struct {
	mu sync.RWMutex

	nextClientCode int
	users          map[string]*types.User
	clients        map[string]*types.Client
	projects       map[string]*types.Project
	team           map[string][]*types.TeamMember
	items          map[string]*types.ChecklistItem
	documents      map[string]*types.Document
}

func New() *Store {
	return &Store{
		nextClientCode: firstClientCode,
		users:          make(map[string]*types.User),
		clients:        make(map[string]*types.Client),
		projects:       make(map[string]*types.Project),
		team:           make(map[string][]*types.TeamMember),
		items:          make(map[string]*types.ChecklistItem),
		documents:      make(map[string]*types.Document),
	}
}

func (s *Store) userName(userID *string) *string {
	if userID == nil {
		return nil
	}
	u, ok := s.users[*userID]
	if !ok {
		return nil
	}
	name := u.FullName()
	return &name
}

// Users

func (s *Store) User(_ context.Context, userID string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (s *Store) CreateUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %s is already registered: %w", user.Email, types.ErrConflict)
		}
	}

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// Clients

func (s *Store) Clients(_ context.Context) ([]*types.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Client, 0, len(s.clients))
	for _, c := range s.clients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Client(_ context.Context, clientID string) (*types.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[clientID]
	if !ok {
		return nil, types.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) CreateClient(_ context.Context, client *types.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client.Code = fmt.Sprintf("CL-%d", s.nextClientCode)
	s.nextClientCode++

	cp := *client
	s.clients[client.ID] = &cp
	return nil
}

func (s *Store) UpdateClient(_ context.Context, clientID string, update *types.ClientUpdate) (*types.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return nil, types.ErrClientNotFound
	}

	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.ContactName != nil {
		c.ContactName = update.ContactName
	}
	if update.ContactEmail != nil {
		c.ContactEmail = update.ContactEmail
	}
	if update.ContactPhone != nil {
		c.ContactPhone = update.ContactPhone
	}
	c.UpdatedAt = time.Now().UTC()

	cp := *c
	return &cp, nil
}

func (s *Store) DeleteClient(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return types.ErrClientNotFound
	}

	for _, p := range s.projects {
		if p.ClientID == clientID {
			return fmt.Errorf("client %s still has projects: %w", clientID, types.ErrConflict)
		}
	}

	delete(s.clients, clientID)
	return nil
}

func (s *Store) CountActiveClients(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.clients {
		if c.Status == types.ClientStatusActive {
			n++
		}
	}
	return n, nil
}

// Projects

func (s *Store) projectView(p *types.Project) *types.Project {
	cp := *p
	cp.ClientName = nil
	if c, ok := s.clients[p.ClientID]; ok {
		name := c.LegalName
		cp.ClientName = &name
	}

	cp.TeamLeadName = ""
	if name := s.userName(p.TeamLeadID); name != nil {
		cp.TeamLeadName = *name
	}
	return &cp
}

func (s *Store) Projects(_ context.Context, filter *types.ProjectFilter) ([]*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if filter != nil && filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter != nil && filter.ClientID != "" && p.ClientID != filter.ClientID {
			continue
		}
		out = append(out, s.projectView(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Project(_ context.Context, projectID string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, types.ErrProjectNotFound
	}
	return s.projectView(p), nil
}

func (s *Store) CountProjectCodes(_ context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.projects {
		if strings.HasPrefix(p.Code, prefix+"-") {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateProject(_ context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[project.ClientID]; !ok {
		return fmt.Errorf("client %s does not exist: %w", project.ClientID, types.ErrValidation)
	}

	for _, p := range s.projects {
		if p.Code == project.Code {
			return fmt.Errorf("project code %s already exists: %w", project.Code, types.ErrConflict)
		}
	}

	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *Store) UpdateProjectStatus(_ context.Context, projectID string, status types.ProjectStatus) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, types.ErrProjectNotFound
	}

	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return s.projectView(p), nil
}

func (s *Store) DeleteProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return types.ErrProjectNotFound
	}

	for id, item := range s.items {
		if item.ProjectID == projectID {
			delete(s.items, id)
		}
	}
	for id, doc := range s.documents {
		if doc.ProjectID == projectID {
			delete(s.documents, id)
		}
	}
	delete(s.team, projectID)
	delete(s.projects, projectID)
	return nil
}

func (s *Store) AddTeamMember(_ context.Context, member *types.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[member.ProjectID]; !ok {
		return types.ErrProjectNotFound
	}
	if _, ok := s.users[member.UserID]; !ok {
		return fmt.Errorf("user %s does not exist: %w", member.UserID, types.ErrValidation)
	}

	for _, m := range s.team[member.ProjectID] {
		if m.UserID == member.UserID {
			return fmt.Errorf("user %s is already on the team: %w", member.UserID, types.ErrConflict)
		}
	}

	cp := *member
	s.team[member.ProjectID] = append(s.team[member.ProjectID], &cp)
	return nil
}

func (s *Store) TeamMembers(_ context.Context, projectID string) ([]*types.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.TeamMember, 0, len(s.team[projectID]))
	for _, m := range s.team[projectID] {
		cp := *m
		if u, ok := s.users[m.UserID]; ok {
			first, last, email, role := u.FirstName, u.LastName, u.Email, u.Role
			cp.FirstName, cp.LastName, cp.Email, cp.UserRole = &first, &last, &email, &role
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) CountProjectsByStatus(_ context.Context) (map[types.ProjectStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[types.ProjectStatus]int)
	for _, p := range s.projects {
		out[p.Status]++
	}
	return out, nil
}

func (s *Store) ProjectActivity(_ context.Context, limit int) ([]*types.ProjectActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*types.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].UpdatedAt.After(projects[j].UpdatedAt) })
	if len(projects) > limit {
		projects = projects[:limit]
	}

	out := make([]*types.ProjectActivity, 0, len(projects))
	for _, p := range projects {
		view := s.projectView(p)
		a := &types.ProjectActivity{
			ProjectID:      p.ID,
			ProjectCode:    p.Code,
			Status:         p.Status,
			ClientName:     view.ClientName,
			TeamLead:       s.userName(p.TeamLeadID),
			CompletionDate: p.CompletionDate,
			UpdatedAt:      p.UpdatedAt,
		}
		for _, item := range s.items {
			if item.ProjectID != p.ID {
				continue
			}
			a.TotalChecklists++
			if item.Status == types.ChecklistStatusCompleted {
				a.CompletedChecklists++
			}
		}
		out = append(out, a)
	}
	return out, nil
}

// Checklist items

func (s *Store) itemView(item *types.ChecklistItem) *types.ChecklistItem {
	cp := *item
	cp.AssignedToName = s.userName(item.AssignedTo)
	cp.SignedOffByName = s.userName(item.SignedOffBy)
	return &cp
}

func (s *Store) ChecklistItems(_ context.Context, projectID string) ([]*types.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ChecklistItem, 0)
	for _, item := range s.items {
		if item.ProjectID == projectID {
			out = append(out, s.itemView(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) ChecklistItem(_ context.Context, itemID string) (*types.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, types.ErrChecklistNotFound
	}
	return s.itemView(item), nil
}

func (s *Store) CreateChecklistItems(_ context.Context, items []*types.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range items {
		if _, ok := s.projects[item.ProjectID]; !ok {
			return fmt.Errorf("item %d: project %s does not exist: %w", i, item.ProjectID, types.ErrValidation)
		}
		if item.AssignedTo != nil {
			if _, ok := s.users[*item.AssignedTo]; !ok {
				return fmt.Errorf("item %d: assignee %s does not exist: %w", i, *item.AssignedTo, types.ErrValidation)
			}
		}
	}

	for _, item := range items {
		cp := *item
		s.items[item.ID] = &cp
	}
	return nil
}

func (s *Store) MutateChecklistItem(_ context.Context, itemID string, fn types.ChecklistMutator) (*types.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, types.ErrChecklistNotFound
	}

	working := *item
	if err := fn(&working); err != nil {
		return nil, err
	}

	s.items[itemID] = &working
	return s.itemView(&working), nil
}

func (s *Store) DeleteChecklistItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return types.ErrChecklistNotFound
	}

	delete(s.items, itemID)
	for _, doc := range s.documents {
		if doc.ChecklistID != nil && *doc.ChecklistID == itemID {
			doc.ChecklistID = nil
		}
	}
	return nil
}

func (s *Store) CountOpenChecklistItems(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if item.Status != types.ChecklistStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (s *Store) PendingTasks(_ context.Context, userID string, limit int) ([]*types.PendingTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.PendingTask, 0)
	for _, item := range s.items {
		if item.AssignedTo == nil || *item.AssignedTo != userID || item.Status == types.ChecklistStatusCompleted {
			continue
		}

		task := &types.PendingTask{
			ID:      item.ID,
			Title:   item.Title,
			Code:    item.Code,
			DueDate: item.DueDate,
			Status:  item.Status,
		}
		if p, ok := s.projects[item.ProjectID]; ok {
			task.ProjectCode = p.Code
			task.ClientName = s.projectView(p).ClientName
		}
		out = append(out, task)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.Code < b.Code
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.Code < b.Code
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Workload(_ context.Context, roles []types.Role) ([]*types.Workload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Workload, 0)
	for _, u := range s.users {
		if !u.IsActive || !slices.Contains(roles, u.Role) {
			continue
		}

		w := &types.Workload{UserID: u.ID, Name: u.FullName(), Role: u.Role}
		for _, members := range s.team {
			for _, m := range members {
				if m.UserID == u.ID {
					w.ProjectsCount++
					w.TotalWorkPercentage += m.WorkPercentage
				}
			}
		}
		for _, item := range s.items {
			if item.AssignedTo != nil && *item.AssignedTo == u.ID && item.Status != types.ChecklistStatusCompleted {
				w.AssignedChecklists++
			}
		}
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectsCount != out[j].ProjectsCount {
			return out[i].ProjectsCount > out[j].ProjectsCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Documents

func (s *Store) documentView(doc *types.Document) *types.Document {
	cp := *doc
	cp.UploadedByName = s.userName(&doc.UploadedBy)
	return &cp
}

func (s *Store) CreateDocument(_ context.Context, doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[doc.ProjectID]; !ok {
		return fmt.Errorf("project %s does not exist: %w", doc.ProjectID, types.ErrValidation)
	}

	cp := *doc
	s.documents[doc.ID] = &cp
	return nil
}

func (s *Store) Document(_ context.Context, documentID string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return nil, types.ErrDocumentNotFound
	}
	return s.documentView(doc), nil
}

func (s *Store) documentsWhere(match func(*types.Document) bool) []*types.Document {
	out := make([]*types.Document, 0)
	for _, doc := range s.documents {
		if match(doc) {
			out = append(out, s.documentView(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

func (s *Store) DocumentsByProject(_ context.Context, projectID string) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documentsWhere(func(d *types.Document) bool { return d.ProjectID == projectID }), nil
}

func (s *Store) DocumentsByChecklist(_ context.Context, checklistID string) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documentsWhere(func(d *types.Document) bool {
		return d.ChecklistID != nil && *d.ChecklistID == checklistID
	}), nil
}

func (s *Store) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[documentID]; !ok {
		return types.ErrDocumentNotFound
	}
	delete(s.documents, documentID)
	return nil
}
