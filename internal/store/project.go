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

const (
	projectTableName = "projects"
	teamTableName    = "project_team"
)

var (
	projectColumns = utils.Columns(types.Project{})
	teamColumns    = utils.Columns(types.TeamMember{})
)

// projectRow carries the joined display columns next to the project itself.
type projectRow struct {
	types.Project
	JoinedClientName   *string `db:"client_name"`
	JoinedTeamLeadName *string `db:"team_lead_name"`
}

func (row *projectRow) project() *types.Project {
	p := row.Project
	p.ClientName = row.JoinedClientName
	p.TeamLeadName = utils.PtrString(row.JoinedTeamLeadName)
	return &p
}

type teamMemberRow struct {
	types.TeamMember
	JoinedFirstName *string     `db:"first_name"`
	JoinedLastName  *string     `db:"last_name"`
	JoinedEmail     *string     `db:"email"`
	JoinedRole      *types.Role `db:"user_role"`
}

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// selectProjects joins client and team lead names. LEFT JOINs keep projects
// whose references dangle.
func selectProjects() sq.SelectBuilder {
	columns := append(
		utils.QualifyColumns("p", projectColumns),
		"c.legal_name AS client_name",
		"NULLIF(trim(concat_ws(' ', u.first_name, u.last_name)), '') AS team_lead_name",
	)

	return psql().
		Select(columns...).
		From(projectTableName+" p").
		LeftJoin("clients c ON c.id = p.client_id").
		LeftJoin("users u ON u.id = p.team_lead_id")
}

func (r *ProjectRepository) Projects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, error) {
	builder := selectProjects().OrderBy("p.created_at DESC")
	if filter != nil && filter.Status != "" {
		builder = builder.Where(sq.Eq{"p.status": filter.Status})
	}
	if filter != nil && filter.ClientID != "" {
		builder = builder.Where(sq.Eq{"p.client_id": filter.ClientID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate projects query: %w", err)
	}

	var rows = make([]*projectRow, 0)
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	projects := make([]*types.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.project())
	}

	return projects, nil
}

func (r *ProjectRepository) Project(ctx context.Context, projectID string) (*types.Project, error) {
	query, args, err := selectProjects().
		Where(sq.Eq{"p.id": projectID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project query: %w", err)
	}

	var row projectRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return row.project(), nil
}

func (r *ProjectRepository) CountProjectCodes(ctx context.Context, prefix string) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(projectTableName).
		Where(sq.Like{"project_code": prefix + "-%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate project code count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count project codes: %w", err)
	}

	return count, nil
}

func (r *ProjectRepository) CreateProject(ctx context.Context, project *types.Project) error {
	query, args, err := psql().
		Insert(projectTableName).
		SetMap(utils.ColumnValues(project)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create project query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "create project")
	}

	return nil
}

func (r *ProjectRepository) UpdateProjectStatus(ctx context.Context, projectID string, status types.ProjectStatus) (*types.Project, error) {
	query, args, err := psql().
		Update(projectTableName).
		Set("status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update project status query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, types.ErrProjectNotFound
	}

	return r.Project(ctx, projectID)
}

// DeleteProject relies on ON DELETE CASCADE for checklist items, documents
// and team rows, so the whole removal is one statement.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	query, args, err := psql().
		Delete(projectTableName).
		Where(sq.Eq{"id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete project query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrProjectNotFound
	}

	return nil
}

func (r *ProjectRepository) AddTeamMember(ctx context.Context, member *types.TeamMember) error {
	query, args, err := psql().
		Insert(teamTableName).
		SetMap(utils.ColumnValues(member)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate add team member query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "add team member")
	}

	return nil
}

func (r *ProjectRepository) TeamMembers(ctx context.Context, projectID string) ([]*types.TeamMember, error) {
	columns := append(
		utils.QualifyColumns("t", teamColumns),
		"u.first_name", "u.last_name", "u.email", "u.role AS user_role",
	)

	query, args, err := psql().
		Select(columns...).
		From(teamTableName+" t").
		LeftJoin("users u ON u.id = t.user_id").
		Where(sq.Eq{"t.project_id": projectID}).
		OrderBy("t.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team members query: %w", err)
	}

	var rows = make([]*teamMemberRow, 0)
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %w", err)
	}

	members := make([]*types.TeamMember, 0, len(rows))
	for _, row := range rows {
		m := row.TeamMember
		m.FirstName, m.LastName, m.Email, m.UserRole = row.JoinedFirstName, row.JoinedLastName, row.JoinedEmail, row.JoinedRole
		members = append(members, &m)
	}

	return members, nil
}

func (r *ProjectRepository) CountProjectsByStatus(ctx context.Context) (map[types.ProjectStatus]int, error) {
	query, args, err := psql().
		Select("status", "count(*) AS count").
		From(projectTableName).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project status count query: %w", err)
	}

	var rows []struct {
		Status types.ProjectStatus `db:"status"`
		Count  int                 `db:"count"`
	}
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects by status: %w", err)
	}

	out := make(map[types.ProjectStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}

	return out, nil
}

func (r *ProjectRepository) ProjectActivity(ctx context.Context, limit int) ([]*types.ProjectActivity, error) {
	query, args, err := psql().
		Select(
			"p.id",
			"p.project_code",
			"p.status",
			"c.legal_name AS client_name",
			"NULLIF(trim(concat_ws(' ', u.first_name, u.last_name)), '') AS team_lead",
			"count(ci.id) AS total_checklists",
			"count(ci.id) FILTER (WHERE ci.status = 'Completed') AS completed_checklists",
			"p.completion_date",
			"p.updated_at",
		).
		From(projectTableName+" p").
		LeftJoin("clients c ON c.id = p.client_id").
		LeftJoin("users u ON u.id = p.team_lead_id").
		LeftJoin("checklist_items ci ON ci.project_id = p.id").
		GroupBy("p.id", "c.legal_name", "u.first_name", "u.last_name").
		OrderBy("p.updated_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project activity query: %w", err)
	}

	var activity = make([]*types.ProjectActivity, 0)
	err = pgxscan.Select(ctx, r.pool, &activity, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project activity: %w", err)
	}

	return activity, nil
}
