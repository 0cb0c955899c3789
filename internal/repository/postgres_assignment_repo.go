package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresAssignmentRepo はPostgreSQLを使用した課題リポジトリ。
type PostgresAssignmentRepo struct {
	db database.DBTX
}

// NewPostgresAssignmentRepo はPostgresAssignmentRepoを生成する。
func NewPostgresAssignmentRepo(db database.DBTX) *PostgresAssignmentRepo {
	return &PostgresAssignmentRepo{db: db}
}

const assignmentColumns = `id, class_id, title, created_at, updated_at`

// FindByID は指定IDの課題を取得する。見つからない場合はnilを返す。
func (r *PostgresAssignmentRepo) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.ClassID, &a.Title, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment by ID: %w", err)
	}
	return a, nil
}

// ListByClassIDs は指定授業群に属する課題を作成順で返す。
func (r *PostgresAssignmentRepo) ListByClassIDs(ctx context.Context, classIDs []string) ([]*model.Assignment, error) {
	if len(classIDs) == 0 {
		return []*model.Assignment{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE class_id = ANY($1) ORDER BY created_at`,
		inIDs(classIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []*model.Assignment{}
	for rows.Next() {
		a := &model.Assignment{}
		if err := rows.Scan(&a.ID, &a.ClassID, &a.Title, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// ListWithClassByClassIDs は課題を所属授業とJOINして返す。
func (r *PostgresAssignmentRepo) ListWithClassByClassIDs(ctx context.Context, classIDs []string) ([]*model.AssignmentWithClass, error) {
	if len(classIDs) == 0 {
		return []*model.AssignmentWithClass{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.class_id, a.title, a.created_at, a.updated_at,
		        c.id, c.semester_id, c.class_code, c.professor, c.grade, c.created_at, c.updated_at
		 FROM assignments a
		 JOIN classes c ON c.id = a.class_id
		 WHERE a.class_id = ANY($1)
		 ORDER BY c.class_code, a.created_at`,
		inIDs(classIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments with class: %w", err)
	}
	defer rows.Close()

	result := []*model.AssignmentWithClass{}
	for rows.Next() {
		var ac model.AssignmentWithClass
		err := rows.Scan(
			&ac.ID, &ac.ClassID, &ac.Title, &ac.Assignment.CreatedAt, &ac.Assignment.UpdatedAt,
			&ac.Class.ID, &ac.Class.SemesterID, &ac.Class.ClassCode, &ac.Class.Professor, &ac.Class.Grade,
			&ac.Class.CreatedAt, &ac.Class.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment with class: %w", err)
		}
		result = append(result, &ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments with class: %w", err)
	}
	return result, nil
}

// ListIDsByClassIDs は指定授業群に属する課題IDを返す。
func (r *PostgresAssignmentRepo) ListIDsByClassIDs(ctx context.Context, classIDs []string) ([]string, error) {
	if len(classIDs) == 0 {
		return []string{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM assignments WHERE class_id = ANY($1)`, inIDs(classIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment IDs: %w", err)
	}
	ids, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment IDs: %w", err)
	}
	return ids, nil
}

// Create は課題を作成する。
func (r *PostgresAssignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assignments (id, class_id, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.ClassID, a.Title, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert assignment", err)
	}
	return nil
}

// Update は課題のタイトルと所属授業を更新する。
func (r *PostgresAssignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET class_id = $2, title = $3, updated_at = $4 WHERE id = $1`,
		a.ID, a.ClassID, a.Title, a.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update assignment", err)
	}
	return nil
}

// DeleteByID は指定IDの課題を削除する。
func (r *PostgresAssignmentRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	return affected("failed to delete assignment", res, err)
}

// DeleteByClassIDs は指定授業群に属する課題を削除する。
func (r *PostgresAssignmentRepo) DeleteByClassIDs(ctx context.Context, classIDs []string) (int64, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE class_id = ANY($1)`, inIDs(classIDs))
	return affected("failed to delete assignments by class", res, err)
}

var _ AssignmentRepository = (*PostgresAssignmentRepo)(nil)
