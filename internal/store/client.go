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

const clientTableName = "clients"

var clientColumns = utils.Columns(types.Client{})

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) Clients(ctx context.Context) ([]*types.Client, error) {
	query, args, err := psql().
		Select(clientColumns...).
		From(clientTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate clients query: %w", err)
	}

	var clients = make([]*types.Client, 0)
	err = pgxscan.Select(ctx, r.pool, &clients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepository) Client(ctx context.Context, clientID string) (*types.Client, error) {
	query, args, err := psql().
		Select(clientColumns...).
		From(clientTableName).
		Where(sq.Eq{"id": clientID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate client query: %w", err)
	}

	var client types.Client
	err = pgxscan.Get(ctx, r.pool, &client, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	return &client, nil
}

// CreateClient draws the client code from client_code_seq inside the insert
// and writes it back onto client.
func (r *ClientRepository) CreateClient(ctx context.Context, client *types.Client) error {
	values := utils.ColumnValues(client)
	values["client_code"] = sq.Expr("'CL-' || nextval('client_code_seq')")

	query, args, err := psql().
		Insert(clientTableName).
		SetMap(values).
		Suffix("RETURNING client_code").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create client query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&client.Code)
	if err != nil {
		return classify(err, "create client")
	}

	return nil
}

func (r *ClientRepository) UpdateClient(ctx context.Context, clientID string, update *types.ClientUpdate) (*types.Client, error) {
	builder := psql().
		Update(clientTableName).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": clientID}).
		Suffix("RETURNING " + utils.JoinColumns(clientColumns))

	if update.Status != nil {
		builder = builder.Set("status", *update.Status)
	}
	if update.ContactName != nil {
		builder = builder.Set("contact_name", *update.ContactName)
	}
	if update.ContactEmail != nil {
		builder = builder.Set("contact_email", *update.ContactEmail)
	}
	if update.ContactPhone != nil {
		builder = builder.Set("contact_phone", *update.ContactPhone)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update client query: %w", err)
	}

	var client types.Client
	err = pgxscan.Get(ctx, r.pool, &client, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return &client, nil
}

// DeleteClient fails with a conflict while projects still reference the client.
func (r *ClientRepository) DeleteClient(ctx context.Context, clientID string) error {
	query, args, err := psql().
		Delete(clientTableName).
		Where(sq.Eq{"id": clientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete client query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("client %s still has projects: %w", clientID, types.ErrConflict)
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrClientNotFound
	}

	return nil
}

func (r *ClientRepository) CountActiveClients(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(clientTableName).
		Where(sq.Eq{"status": types.ClientStatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate active clients count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active clients: %w", err)
	}

	return count, nil
}
