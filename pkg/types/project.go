package types

import "time"

type ProjectStatus string

const (
	ProjectStatusPlanning    ProjectStatus = "Planning"
	ProjectStatusInProgress  ProjectStatus = "In Progress"
	ProjectStatusUnderReview ProjectStatus = "Under Review"
	ProjectStatusCompleted   ProjectStatus = "Completed"
)

var ProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusUnderReview,
	ProjectStatusCompleted,
}

func (s ProjectStatus) Valid() bool {
	for _, status := range ProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const UnassignedTeamLead = "Unassigned"

type Project struct {
	ID             string        `db:"id" json:"id"`
	Code           string        `db:"project_code" json:"projectCode"`
	ClientID       string        `db:"client_id" json:"clientId"`
	ProjectType    string        `db:"project_type" json:"projectType"`
	Period         *string       `db:"period" json:"period,omitempty"`
	CompletionDate *time.Time    `db:"completion_date" json:"completionDate,omitempty"`
	ProjectValue   *float64      `db:"project_value" json:"projectValue,omitempty"`
	TeamLeadID     *string       `db:"team_lead_id" json:"teamLeadId,omitempty"`
	Status         ProjectStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`

	ClientName   *string `db:"-" json:"clientName"`
	TeamLeadName string  `db:"-" json:"teamLeadName"`
}

type TeamMember struct {
	ProjectID      string    `db:"project_id" json:"projectId"`
	UserID         string    `db:"user_id" json:"userId"`
	WorkPercentage int       `db:"work_percentage" json:"workPercentage"`
	Role           *string   `db:"role" json:"role,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`

	FirstName *string `db:"-" json:"firstName,omitempty"`
	LastName  *string `db:"-" json:"lastName,omitempty"`
	Email     *string `db:"-" json:"email,omitempty"`
	UserRole  *Role   `db:"-" json:"userRole,omitempty"`
}

// ProjectFilter narrows a project listing. Zero values match everything.
type ProjectFilter struct {
	Status   ProjectStatus `form:"status"`
	ClientID string        `form:"clientId"`
}
