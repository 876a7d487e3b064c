package audit

import (
	"context"
	"fmt"

	"auditdesk/pkg/types"
)

const (
	pendingTaskLimit = 10
	activityLimit    = 20
)

var workloadRoles = []types.Role{types.RoleSeniorAuditor, types.RoleJuniorAuditor}

func (s *Service) Summary(ctx context.Context) (*types.DashboardSummary, error) {
	byStatus, err := s.store.CountProjectsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	summary := &types.DashboardSummary{ProjectsByStatus: make(map[types.ProjectStatus]int, len(types.ProjectStatuses))}
	for _, status := range types.ProjectStatuses {
		summary.ProjectsByStatus[status] = byStatus[status]
		summary.TotalProjects += byStatus[status]
	}

	summary.TotalClients, err = s.store.CountActiveClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	summary.PendingChecklists, err = s.store.CountOpenChecklistItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count checklist items: %w", err)
	}

	return summary, nil
}

// TeamWorkload covers senior and junior auditors, busiest first.
func (s *Service) TeamWorkload(ctx context.Context) ([]*types.Workload, error) {
	return s.store.Workload(ctx, workloadRoles)
}

// PendingTasks lists the caller's open items, soonest due first with undated
// items last.
func (s *Service) PendingTasks(ctx context.Context, userID string) ([]*types.PendingTask, error) {
	return s.store.PendingTasks(ctx, userID, pendingTaskLimit)
}

// ProjectActivity lists recently updated projects with checklist counts and
// review progress.
func (s *Service) ProjectActivity(ctx context.Context) ([]*types.ProjectActivity, error) {
	activity, err := s.store.ProjectActivity(ctx, activityLimit)
	if err != nil {
		return nil, err
	}

	for _, a := range activity {
		items, err := s.store.ChecklistItems(ctx, a.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load checklist for project %s: %w", a.ProjectID, err)
		}
		a.ReviewProgress = Progress(items)
	}

	return activity, nil
}
