package audit

import (
	"context"

	"auditdesk/pkg/types"
)

type ClientStore interface {
	Clients(ctx context.Context) ([]*types.Client, error)
	Client(ctx context.Context, clientID string) (*types.Client, error)
	// CreateClient assigns the next client code from a collision-free sequence.
	CreateClient(ctx context.Context, client *types.Client) error
	UpdateClient(ctx context.Context, clientID string, update *types.ClientUpdate) (*types.Client, error)
	DeleteClient(ctx context.Context, clientID string) error
	CountActiveClients(ctx context.Context) (int, error)
}

type ProjectStore interface {
	Projects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, error)
	Project(ctx context.Context, projectID string) (*types.Project, error)
	CountProjectCodes(ctx context.Context, prefix string) (int, error)
	// CreateProject returns an error wrapping types.ErrConflict when the code
	// is already taken.
	CreateProject(ctx context.Context, project *types.Project) error
	UpdateProjectStatus(ctx context.Context, projectID string, status types.ProjectStatus) (*types.Project, error)
	// DeleteProject removes the project together with its checklist items,
	// documents and team memberships.
	DeleteProject(ctx context.Context, projectID string) error
	AddTeamMember(ctx context.Context, member *types.TeamMember) error
	TeamMembers(ctx context.Context, projectID string) ([]*types.TeamMember, error)
	CountProjectsByStatus(ctx context.Context) (map[types.ProjectStatus]int, error)
	ProjectActivity(ctx context.Context, limit int) ([]*types.ProjectActivity, error)
}

type ChecklistStore interface {
	ChecklistItems(ctx context.Context, projectID string) ([]*types.ChecklistItem, error)
	ChecklistItem(ctx context.Context, itemID string) (*types.ChecklistItem, error)
	// CreateChecklistItems inserts all items or none.
	CreateChecklistItems(ctx context.Context, items []*types.ChecklistItem) error
	// MutateChecklistItem applies fn to the locked row and persists the result.
	MutateChecklistItem(ctx context.Context, itemID string, fn types.ChecklistMutator) (*types.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, itemID string) error
	CountOpenChecklistItems(ctx context.Context) (int, error)
	// PendingTasks lists open items assigned to userID, due date ascending
	// with undated items last.
	PendingTasks(ctx context.Context, userID string, limit int) ([]*types.PendingTask, error)
	Workload(ctx context.Context, roles []types.Role) ([]*types.Workload, error)
}

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *types.Document) error
	Document(ctx context.Context, documentID string) (*types.Document, error)
	DocumentsByProject(ctx context.Context, projectID string) ([]*types.Document, error)
	DocumentsByChecklist(ctx context.Context, checklistID string) ([]*types.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	CreateUser(ctx context.Context, user *types.User) error
}

// Store is everything the service needs from persistence. The postgres
// repositories and the in-memory store both satisfy it.
type Store interface {
	ClientStore
	ProjectStore
	ChecklistStore
	DocumentStore
	UserStore
}
