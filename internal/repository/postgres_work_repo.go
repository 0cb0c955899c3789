package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresAssignmentWorkRepo はPostgreSQLを使用した課題作業リポジトリ。
type PostgresAssignmentWorkRepo struct {
	db database.DBTX
}

// NewPostgresAssignmentWorkRepo はPostgresAssignmentWorkRepoを生成する。
func NewPostgresAssignmentWorkRepo(db database.DBTX) *PostgresAssignmentWorkRepo {
	return &PostgresAssignmentWorkRepo{db: db}
}

const workWithAssignmentQuery = `
	SELECT w.id, w.assignment_id, w.session_id, w.time, w.created_at, w.updated_at,
	       a.id, a.class_id, a.title, a.created_at, a.updated_at
	FROM assignment_works w
	JOIN assignments a ON a.id = w.assignment_id`

func scanWorkWithAssignment(row interface{ Scan(...any) error }) (*model.AssignmentWorkWithAssignment, error) {
	w := &model.AssignmentWorkWithAssignment{}
	err := row.Scan(
		&w.ID, &w.AssignmentID, &w.SessionID, &w.Time, &w.AssignmentWork.CreatedAt, &w.AssignmentWork.UpdatedAt,
		&w.Assignment.ID, &w.Assignment.ClassID, &w.Assignment.Title, &w.Assignment.CreatedAt, &w.Assignment.UpdatedAt,
	)
	return w, err
}

// FindByID は指定IDの課題作業を取得する。見つからない場合はnilを返す。
func (r *PostgresAssignmentWorkRepo) FindByID(ctx context.Context, id string) (*model.AssignmentWork, error) {
	w := &model.AssignmentWork{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, assignment_id, session_id, time, created_at, updated_at
		 FROM assignment_works WHERE id = $1`, id,
	).Scan(&w.ID, &w.AssignmentID, &w.SessionID, &w.Time, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment work by ID: %w", err)
	}
	return w, nil
}

// FindWithAssignmentByID は課題作業を対象課題とJOINして取得する。見つからない場合はnilを返す。
func (r *PostgresAssignmentWorkRepo) FindWithAssignmentByID(ctx context.Context, id string) (*model.AssignmentWorkWithAssignment, error) {
	w, err := scanWorkWithAssignment(r.db.QueryRowContext(ctx, workWithAssignmentQuery+` WHERE w.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment work with assignment: %w", err)
	}
	return w, nil
}

// ListWithAssignmentBySessionID はセッションの課題作業を対象課題とJOINして作成順で返す。
func (r *PostgresAssignmentWorkRepo) ListWithAssignmentBySessionID(ctx context.Context, sessionID string) ([]*model.AssignmentWorkWithAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		workWithAssignmentQuery+` WHERE w.session_id = $1 ORDER BY w.created_at, w.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment works: %w", err)
	}
	defer rows.Close()

	works := []*model.AssignmentWorkWithAssignment{}
	for rows.Next() {
		w, err := scanWorkWithAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment work: %w", err)
		}
		works = append(works, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignment works: %w", err)
	}
	return works, nil
}

// Create は課題作業を作成する。
func (r *PostgresAssignmentWorkRepo) Create(ctx context.Context, w *model.AssignmentWork) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assignment_works (id, assignment_id, session_id, time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		w.ID, w.AssignmentID, w.SessionID, w.Time, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert assignment work", err)
	}
	return nil
}

// Update は作業時間を更新する。
func (r *PostgresAssignmentWorkRepo) Update(ctx context.Context, w *model.AssignmentWork) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assignment_works SET time = $2, updated_at = $3 WHERE id = $1`,
		w.ID, w.Time, w.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update assignment work", err)
	}
	return nil
}

// DeleteByID は指定IDの課題作業を削除する。
func (r *PostgresAssignmentWorkRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignment_works WHERE id = $1`, id)
	return affected("failed to delete assignment work", res, err)
}

// DeleteBySessionIDs は指定セッション群の課題作業を削除する。
func (r *PostgresAssignmentWorkRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignment_works WHERE session_id = ANY($1)`, inIDs(sessionIDs))
	return affected("failed to delete assignment works by session", res, err)
}

// DeleteByAssignmentIDs は指定課題群を対象とする課題作業を削除する。
func (r *PostgresAssignmentWorkRepo) DeleteByAssignmentIDs(ctx context.Context, assignmentIDs []string) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignment_works WHERE assignment_id = ANY($1)`, inIDs(assignmentIDs))
	return affected("failed to delete assignment works by assignment", res, err)
}

var _ AssignmentWorkRepository = (*PostgresAssignmentWorkRepo)(nil)
