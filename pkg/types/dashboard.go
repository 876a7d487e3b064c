package types

import "time"

type DashboardSummary struct {
	TotalProjects     int                   `json:"totalProjects"`
	ProjectsByStatus  map[ProjectStatus]int `json:"projectsByStatus"`
	TotalClients      int                   `json:"totalClients"`
	PendingChecklists int                   `json:"pendingChecklists"`
}

type Workload struct {
	UserID              string `db:"id" json:"id"`
	Name                string `db:"name" json:"name"`
	Role                Role   `db:"role" json:"role"`
	ProjectsCount       int    `db:"projects_count" json:"projectsCount"`
	AssignedChecklists  int    `db:"assigned_checklists" json:"assignedChecklists"`
	TotalWorkPercentage int    `db:"total_work_percent" json:"totalWorkPercent"`
}

type PendingTask struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Code        string          `db:"code" json:"code"`
	DueDate     *time.Time      `db:"due_date" json:"dueDate,omitempty"`
	Status      ChecklistStatus `db:"status" json:"status"`
	ProjectCode string          `db:"project_code" json:"projectCode"`
	ClientName  *string         `db:"client_name" json:"clientName,omitempty"`
}

type ProjectActivity struct {
	ProjectID           string        `db:"id" json:"projectId"`
	ProjectCode         string        `db:"project_code" json:"projectCode"`
	Status              ProjectStatus `db:"status" json:"status"`
	ClientName          *string       `db:"client_name" json:"clientName,omitempty"`
	TeamLead            *string       `db:"team_lead" json:"teamLead,omitempty"`
	TotalChecklists     int           `db:"total_checklists" json:"totalChecklists"`
	CompletedChecklists int           `db:"completed_checklists" json:"completedChecklists"`
	CompletionDate      *time.Time    `db:"completion_date" json:"completionDate,omitempty"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
	ReviewProgress      int           `db:"-" json:"reviewProgress"`
}
