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

const documentTableName = "documents"

var documentColumns = utils.Columns(types.Document{})

type documentRow struct {
	types.Document
	JoinedUploadedByName *string `db:"uploaded_by_name"`
}

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func selectDocuments() sq.SelectBuilder {
	columns := append(
		utils.QualifyColumns("d", documentColumns),
		"NULLIF(trim(concat_ws(' ', u.first_name, u.last_name)), '') AS uploaded_by_name",
	)

	return psql().
		Select(columns...).
		From(documentTableName + " d").
		LeftJoin("users u ON u.id = d.uploaded_by")
}

func (r *DocumentRepository) documents(ctx context.Context, where sq.Eq) ([]*types.Document, error) {
	query, args, err := selectDocuments().
		Where(where).
		OrderBy("d.uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var rows = make([]*documentRow, 0)
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	docs := make([]*types.Document, 0, len(rows))
	for _, row := range rows {
		doc := row.Document
		doc.UploadedByName = row.JoinedUploadedByName
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *DocumentRepository) Document(ctx context.Context, documentID string) (*types.Document, error) {
	query, args, err := selectDocuments().
		Where(sq.Eq{"d.id": documentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var row documentRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	doc := row.Document
	doc.UploadedByName = row.JoinedUploadedByName
	return &doc, nil
}

func (r *DocumentRepository) DocumentsByProject(ctx context.Context, projectID string) ([]*types.Document, error) {
	return r.documents(ctx, sq.Eq{"d.project_id": projectID})
}

func (r *DocumentRepository) DocumentsByChecklist(ctx context.Context, checklistID string) ([]*types.Document, error) {
	return r.documents(ctx, sq.Eq{"d.checklist_id": checklistID})
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.Document) error {
	query, args, err := psql().
		Insert(documentTableName).
		SetMap(utils.ColumnValues(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "create document")
	}

	return nil
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {
	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}
