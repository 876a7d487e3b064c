package store

import (
	"errors"
	"fmt"

	"auditdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Store groups the repositories behind one value that satisfies the audit
// service's persistence interface.
type Store struct {
	*UserRepository
	*ClientRepository
	*ProjectRepository
	*ChecklistRepository
	*DocumentRepository
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		UserRepository:      NewUserRepository(pool),
		ClientRepository:    NewClientRepository(pool),
		ProjectRepository:   NewProjectRepository(pool),
		ChecklistRepository: NewChecklistRepository(pool),
		DocumentRepository:  NewDocumentRepository(pool),
	}
}

// classify maps constraint violations onto the domain sentinels. A unique
// violation is a conflict; a foreign key violation on insert means the
// request referenced something that does not exist.
func classify(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %s: %w", action, pgErr.ConstraintName, types.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", action, pgErr.ConstraintName, types.ErrValidation)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
