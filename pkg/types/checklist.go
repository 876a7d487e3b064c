package types

import (
	"fmt"
	"time"
)

type ChecklistStatus string

const (
	ChecklistStatusPending    ChecklistStatus = "Pending"
	ChecklistStatusInProgress ChecklistStatus = "In Progress"
	ChecklistStatusCompleted  ChecklistStatus = "Completed"
	ChecklistStatusBlocked    ChecklistStatus = "Blocked"
)

func (s ChecklistStatus) Valid() bool {
	switch s {
	case ChecklistStatusPending, ChecklistStatusInProgress, ChecklistStatusCompleted, ChecklistStatusBlocked:
		return true
	}
	return false
}

// SignOffColumn names one of the independent flags on a checklist item.
type SignOffColumn string

const (
	SignOffSenior  SignOffColumn = "senior"
	SignOffEQR     SignOffColumn = "eqr"
	SignOffPartner SignOffColumn = "partner"
	SignOffNA      SignOffColumn = "na"
)

func (c SignOffColumn) Valid() bool {
	switch c {
	case SignOffSenior, SignOffEQR, SignOffPartner, SignOffNA:
		return true
	}
	return false
}

type ChecklistItem struct {
	ID             string          `db:"id" json:"id"`
	ProjectID      string          `db:"project_id" json:"projectId"`
	Code           string          `db:"code" json:"code"`
	Title          string          `db:"title" json:"title"`
	Category       *string         `db:"category" json:"category,omitempty"`
	AssignedTo     *string         `db:"assigned_to" json:"assignedTo,omitempty"`
	DueDate        *time.Time      `db:"due_date" json:"dueDate,omitempty"`
	Status         ChecklistStatus `db:"status" json:"status"`
	SeniorReview   bool            `db:"senior_review" json:"seniorReview"`
	EQRReview      bool            `db:"eqr_review" json:"eqrReview"`
	PartnerReview  bool            `db:"partner_review" json:"partnerReview"`
	NotApplicable  bool            `db:"not_applicable" json:"notApplicable"`
	CompletionDate *time.Time      `db:"completion_date" json:"completionDate,omitempty"`
	SignedOffBy    *string         `db:"signed_off_by" json:"signedOffBy,omitempty"`
	SignOffDate    *time.Time      `db:"sign_off_date" json:"signOffDate,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`

	AssignedToName  *string `db:"-" json:"assignedToName,omitempty"`
	SignedOffByName *string `db:"-" json:"signedOffByName,omitempty"`
}

// SetStatus overwrites the status. Completed stamps the completion date; any
// other status leaves a previously stamped date in place.
func (c *ChecklistItem) SetStatus(status ChecklistStatus, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid checklist status %q", ErrValidation, status)
	}

	c.Status = status
	if status == ChecklistStatusCompleted {
		c.CompletionDate = &now
	}
	c.UpdatedAt = now
	return nil
}

// Toggle flips exactly one flag. Review flags stay editable while the item is
// marked not applicable; they are simply not scored.
func (c *ChecklistItem) Toggle(column SignOffColumn, now time.Time) error {
	switch column {
	case SignOffSenior:
		c.SeniorReview = !c.SeniorReview
	case SignOffEQR:
		c.EQRReview = !c.EQRReview
	case SignOffPartner:
		c.PartnerReview = !c.PartnerReview
	case SignOffNA:
		c.NotApplicable = !c.NotApplicable
	default:
		return fmt.Errorf("%w: invalid sign-off column %q", ErrValidation, column)
	}
	c.UpdatedAt = now
	return nil
}

// SignOff completes the item on behalf of userID regardless of the review flags.
func (c *ChecklistItem) SignOff(userID string, now time.Time) {
	c.Status = ChecklistStatusCompleted
	c.CompletionDate = &now
	c.SignedOffBy = &userID
	c.SignOffDate = &now
	c.UpdatedAt = now
}

// ReviewPoints is the item's contribution to progress, out of a maximum of 3.
func (c *ChecklistItem) ReviewPoints() int {
	if c.NotApplicable {
		return 3
	}

	points := 0
	for _, flag := range []bool{c.SeniorReview, c.EQRReview, c.PartnerReview} {
		if flag {
			points++
		}
	}
	return points
}

// ChecklistMutator changes an item loaded under a row lock. Returning an
// error aborts the write.
type ChecklistMutator func(item *ChecklistItem) error

type NewChecklistItem struct {
	ProjectID  string  `json:"projectId"`
	Code       string  `json:"checklistCode"`
	Title      string  `json:"checklistTitle"`
	Category   *string `json:"category"`
	AssignedTo *string `json:"assignedTo"`
	DueDate    *string `json:"dueDate"`
}

// SeriesProgress is the progress of one series bucket of a project checklist.
type SeriesProgress struct {
	Series    string `json:"series"`
	Title     string `json:"title"`
	ItemCount int    `json:"itemCount"`
	Progress  int    `json:"progress"`
}

type ProjectProgress struct {
	ProjectID string           `json:"projectId"`
	ItemCount int              `json:"itemCount"`
	Progress  int              `json:"progress"`
	Series    []SeriesProgress `json:"series"`
	Other     SeriesProgress   `json:"other"`
}
