package store

import (
	"context"
	"fmt"

	"auditdesk/internal/utils"
	"auditdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const checklistTableName = "checklist_items"

var checklistColumns = utils.Columns(types.ChecklistItem{})

type checklistRow struct {
	types.ChecklistItem
	JoinedAssignedToName  *string `db:"assigned_to_name"`
	JoinedSignedOffByName *string `db:"signed_off_by_name"`
}

func (row *checklistRow) item() *types.ChecklistItem {
	item := row.ChecklistItem
	item.AssignedToName = row.JoinedAssignedToName
	item.SignedOffByName = row.JoinedSignedOffByName
	return &item
}

type ChecklistRepository struct {
	pool *pgxpool.Pool
}

func NewChecklistRepository(pool *pgxpool.Pool) *ChecklistRepository {
	return &ChecklistRepository{pool: pool}
}

func selectChecklistItems() sq.SelectBuilder {
	columns := append(
		utils.QualifyColumns("ci", checklistColumns),
		"NULLIF(trim(concat_ws(' ', a.first_name, a.last_name)), '') AS assigned_to_name",
		"NULLIF(trim(concat_ws(' ', s.first_name, s.last_name)), '') AS signed_off_by_name",
	)

	return psql().
		Select(columns...).
		From(checklistTableName+" ci").
		LeftJoin("users a ON a.id = ci.assigned_to").
		LeftJoin("users s ON s.id = ci.signed_off_by")
}

// ChecklistItems returns rows ordered by code; callers apply natural ordering.
func (r *ChecklistRepository) ChecklistItems(ctx context.Context, projectID string) ([]*types.ChecklistItem, error) {
	query, args, err := selectChecklistItems().
		Where(sq.Eq{"ci.project_id": projectID}).
		OrderBy("ci.code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate checklist items query: %w", err)
	}

	var rows = make([]*checklistRow, 0)
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checklist items: %w", err)
	}

	items := make([]*types.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}

	return items, nil
}

func (r *ChecklistRepository) ChecklistItem(ctx context.Context, itemID string) (*types.ChecklistItem, error) {
	query, args, err := selectChecklistItems().
		Where(sq.Eq{"ci.id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate checklist item query: %w", err)
	}

	var row checklistRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrChecklistNotFound
		}
		return nil, fmt.Errorf("failed to fetch checklist item: %w", err)
	}

	return row.item(), nil
}

// CreateChecklistItems writes the whole batch as a single multi-row insert.
func (r *ChecklistRepository) CreateChecklistItems(ctx context.Context, items []*types.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := psql().Insert(checklistTableName).Columns(checklistColumns...)
	for _, item := range items {
		values := utils.ColumnValues(item)
		row := make([]any, 0, len(checklistColumns))
		for _, column := range checklistColumns {
			row = append(row, values[column])
		}
		builder = builder.Values(row...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create checklist items query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "create checklist items")
	}

	return nil
}

// MutateChecklistItem loads the row with SELECT ... FOR UPDATE, applies fn and
// writes the result back in the same transaction, so concurrent toggles of
// different columns cannot overwrite each other.
func (r *ChecklistRepository) MutateChecklistItem(ctx context.Context, itemID string, fn types.ChecklistMutator) (*types.ChecklistItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Select(checklistColumns...).
		From(checklistTableName).
		Where(sq.Eq{"id": itemID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate locked checklist item query: %w", err)
	}

	var item types.ChecklistItem
	err = pgxscan.Get(ctx, tx, &item, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrChecklistNotFound
		}
		return nil, fmt.Errorf("failed to lock checklist item: %w", err)
	}

	if err := fn(&item); err != nil {
		return nil, err
	}

	query, args, err = psql().
		Update(checklistTableName).
		SetMap(map[string]any{
			"status":          item.Status,
			"senior_review":   item.SeniorReview,
			"eqr_review":      item.EQRReview,
			"partner_review":  item.PartnerReview,
			"not_applicable":  item.NotApplicable,
			"completion_date": item.CompletionDate,
			"signed_off_by":   item.SignedOffBy,
			"sign_off_date":   item.SignOffDate,
			"updated_at":      item.UpdatedAt,
		}).
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update checklist item query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, classify(err, "update checklist item")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checklist item update: %w", err)
	}

	return r.ChecklistItem(ctx, itemID)
}

func (r *ChecklistRepository) DeleteChecklistItem(ctx context.Context, itemID string) error {
	query, args, err := psql().
		Delete(checklistTableName).
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete checklist item query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrChecklistNotFound
	}

	return nil
}

func (r *ChecklistRepository) CountOpenChecklistItems(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(checklistTableName).
		Where(sq.NotEq{"status": types.ChecklistStatusCompleted}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate open checklist count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open checklist items: %w", err)
	}

	return count, nil
}

func (r *ChecklistRepository) PendingTasks(ctx context.Context, userID string, limit int) ([]*types.PendingTask, error) {
	query, args, err := psql().
		Select(
			"ci.id",
			"ci.title",
			"ci.code",
			"ci.due_date",
			"ci.status",
			"p.project_code",
			"c.legal_name AS client_name",
		).
		From(checklistTableName+" ci").
		Join("projects p ON p.id = ci.project_id").
		LeftJoin("clients c ON c.id = p.client_id").
		Where(sq.Eq{"ci.assigned_to": userID}).
		Where(sq.NotEq{"ci.status": types.ChecklistStatusCompleted}).
		OrderBy("ci.due_date ASC NULLS LAST", "ci.code ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending tasks query: %w", err)
	}

	var tasks = make([]*types.PendingTask, 0)
	err = pgxscan.Select(ctx, r.pool, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending tasks: %w", err)
	}

	return tasks, nil
}

func (r *ChecklistRepository) Workload(ctx context.Context, roles []types.Role) ([]*types.Workload, error) {
	query, args, err := psql().
		Select(
			"u.id",
			"trim(concat_ws(' ', u.first_name, u.last_name)) AS name",
			"u.role",
			"(SELECT count(DISTINCT pt.project_id) FROM project_team pt WHERE pt.user_id = u.id) AS projects_count",
			"(SELECT count(*) FROM checklist_items ci WHERE ci.assigned_to = u.id AND ci.status <> 'Completed') AS assigned_checklists",
			"(SELECT coalesce(sum(pt.work_percentage), 0) FROM project_team pt WHERE pt.user_id = u.id) AS total_work_percent",
		).
		From(userTableName+" u").
		Where(sq.Eq{"u.role": roles, "u.is_active": true}).
		OrderBy("projects_count DESC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workload query: %w", err)
	}

	var workload = make([]*types.Workload, 0)
	err = pgxscan.Select(ctx, r.pool, &workload, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team workload: %w", err)
	}

	return workload, nil
}
