package audit

import (
	"context"
	"fmt"
	"strings"

	"auditdesk/internal/utils"
	"auditdesk/pkg/types"
)

// ChecklistItems returns a project's items in series then natural code order.
func (s *Service) ChecklistItems(ctx context.Context, projectID string) ([]*types.ChecklistItem, error) {
	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, err
	}

	items, err := s.store.ChecklistItems(ctx, projectID)
	if err != nil {
		return nil, err
	}

	SortChecklistItems(items)
	return items, nil
}

func (s *Service) ChecklistItem(ctx context.Context, itemID string) (*types.ChecklistItem, error) {
	return s.store.ChecklistItem(ctx, itemID)
}

func (s *Service) CreateChecklistItem(ctx context.Context, in *types.NewChecklistItem) (*types.ChecklistItem, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, validationError("project id is required")
	}

	if _, err := s.store.Project(ctx, in.ProjectID); err != nil {
		return nil, asValidation(err, "project %s does not exist", in.ProjectID)
	}

	item, err := s.buildChecklistItem(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateChecklistItems(ctx, []*types.ChecklistItem{item}); err != nil {
		return nil, fmt.Errorf("failed to create checklist item: %w", err)
	}
	return item, nil
}

// BulkCreateChecklistItems stores every item or none. The first invalid entry
// rejects the batch with its index in the message.
func (s *Service) BulkCreateChecklistItems(ctx context.Context, projectID string, in []*types.NewChecklistItem) ([]*types.ChecklistItem, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, validationError("project id is required")
	}
	if len(in) == 0 {
		return nil, validationError("at least one checklist item is required")
	}

	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, asValidation(err, "project %s does not exist", projectID)
	}

	items := make([]*types.ChecklistItem, 0, len(in))
	for i, entry := range in {
		if entry == nil {
			return nil, validationError("item %d: empty entry", i)
		}
		entry.ProjectID = projectID

		item, err := s.buildChecklistItem(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}

	if err := s.store.CreateChecklistItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to create checklist items: %w", err)
	}

	s.logger.WithField("project_id", projectID).WithField("items", len(items)).Info("checklist items created")
	return items, nil
}

// ApplyTemplate adds the standard 10/20/30 series audit program to a project.
func (s *Service) ApplyTemplate(ctx context.Context, projectID string) ([]*types.ChecklistItem, error) {
	in := make([]*types.NewChecklistItem, 0, len(standardProgram))
	for _, step := range standardProgram {
		in = append(in, &types.NewChecklistItem{
			ProjectID: projectID,
			Code:      step.code,
			Title:     step.title,
			Category:  utils.StringPtr(step.category),
		})
	}

	return s.BulkCreateChecklistItems(ctx, projectID, in)
}

func (s *Service) buildChecklistItem(ctx context.Context, in *types.NewChecklistItem) (*types.ChecklistItem, error) {
	code := strings.TrimSpace(in.Code)
	title := strings.TrimSpace(in.Title)
	if code == "" {
		return nil, validationError("checklist code is required")
	}
	if title == "" {
		return nil, validationError("checklist title is required")
	}

	due, err := parseDate("due date", in.DueDate)
	if err != nil {
		return nil, err
	}

	var assigneeName *string
	assignee := trimmed(in.AssignedTo)
	if assignee != nil {
		user, err := s.store.User(ctx, *assignee)
		if err != nil {
			return nil, asValidation(err, "assignee %s does not exist", *assignee)
		}
		if name := user.FullName(); name != "" {
			assigneeName = &name
		}
	}

	now := s.now()
	return &types.ChecklistItem{
		ID:         utils.NanoID(),
		ProjectID:  in.ProjectID,
		Code:       code,
		Title:      title,
		Category:   trimmed(in.Category),
		AssignedTo: assignee,
		DueDate:    due,
		Status:     types.ChecklistStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,

		AssignedToName: assigneeName,
	}, nil
}

func (s *Service) SetChecklistStatus(ctx context.Context, itemID string, status types.ChecklistStatus) (*types.ChecklistItem, error) {
	if !status.Valid() {
		return nil, validationError("invalid checklist status %q", status)
	}

	return s.store.MutateChecklistItem(ctx, itemID, func(item *types.ChecklistItem) error {
		return item.SetStatus(status, s.now())
	})
}

// ToggleSignOff flips one sign-off column under a row lock.
func (s *Service) ToggleSignOff(ctx context.Context, itemID string, column types.SignOffColumn) (*types.ChecklistItem, error) {
	if !column.Valid() {
		return nil, validationError("invalid sign-off column %q", column)
	}

	return s.store.MutateChecklistItem(ctx, itemID, func(item *types.ChecklistItem) error {
		return item.Toggle(column, s.now())
	})
}

// FinalSignOff completes the item on behalf of signer. Review flags do not
// gate it.
func (s *Service) FinalSignOff(ctx context.Context, itemID, signer string) (*types.ChecklistItem, error) {
	signer = strings.TrimSpace(signer)
	if signer == "" {
		return nil, validationError("signed off by is required")
	}

	if _, err := s.store.User(ctx, signer); err != nil {
		return nil, asValidation(err, "signer %s does not exist", signer)
	}

	item, err := s.store.MutateChecklistItem(ctx, itemID, func(item *types.ChecklistItem) error {
		item.SignOff(signer, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("checklist_id", itemID).WithField("signed_off_by", signer).Info("checklist item signed off")
	return item, nil
}

func (s *Service) DeleteChecklistItem(ctx context.Context, itemID string) error {
	return s.store.DeleteChecklistItem(ctx, itemID)
}

func (s *Service) ProjectProgress(ctx context.Context, projectID string) (*types.ProjectProgress, error) {
	items, err := s.ChecklistItems(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return summarizeProgress(projectID, items), nil
}
