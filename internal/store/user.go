package store

import (
	"context"
	"fmt"
	"strings"

	"auditdesk/internal/utils"
	"auditdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "users"

var userColumns = utils.Columns(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"id": userID})
}

// UserByEmail matches case-insensitively.
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.userWhere(ctx, sq.Expr("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepository) userWhere(ctx context.Context, pred sq.Sqlizer) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	if err := pgxscan.Get(ctx, r.pool, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {
	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.ColumnValues(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "create user")
	}

	return nil
}
