package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresClassRepo はPostgreSQLを使用した授業リポジトリ。
type PostgresClassRepo struct {
	db database.DBTX
}

// NewPostgresClassRepo はPostgresClassRepoを生成する。
func NewPostgresClassRepo(db database.DBTX) *PostgresClassRepo {
	return &PostgresClassRepo{db: db}
}

const classColumns = `id, semester_id, class_code, professor, grade, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*model.Class, error) {
	c := &model.Class{}
	err := row.Scan(&c.ID, &c.SemesterID, &c.ClassCode, &c.Professor, &c.Grade, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// FindByID は指定IDの授業を取得する。見つからない場合はnilを返す。
func (r *PostgresClassRepo) FindByID(ctx context.Context, id string) (*model.Class, error) {
	c, err := scanClass(r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find class by ID: %w", err)
	}
	return c, nil
}

// ListBySemesterIDs は指定学期群に属する授業を授業コード順で返す。
func (r *PostgresClassRepo) ListBySemesterIDs(ctx context.Context, semesterIDs []string) ([]*model.Class, error) {
	if len(semesterIDs) == 0 {
		return []*model.Class{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE semester_id = ANY($1) ORDER BY class_code`,
		inIDs(semesterIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	classes := []*model.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classes: %w", err)
	}
	return classes, nil
}

// ListIDsBySemesterIDs は指定学期群に属する授業IDを返す。
func (r *PostgresClassRepo) ListIDsBySemesterIDs(ctx context.Context, semesterIDs []string) ([]string, error) {
	if len(semesterIDs) == 0 {
		return []string{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM classes WHERE semester_id = ANY($1)`, inIDs(semesterIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list class IDs: %w", err)
	}
	ids, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan class IDs: %w", err)
	}
	return ids, nil
}

// Create は授業を作成する。
func (r *PostgresClassRepo) Create(ctx context.Context, c *model.Class) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classes (id, semester_id, class_code, professor, grade, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.SemesterID, c.ClassCode, c.Professor, c.Grade, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert class", err)
	}
	return nil
}

// Update は授業コード・担当教員・成績を更新する。
func (r *PostgresClassRepo) Update(ctx context.Context, c *model.Class) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE classes SET class_code = $2, professor = $3, grade = $4, updated_at = $5 WHERE id = $1`,
		c.ID, c.ClassCode, c.Professor, c.Grade, c.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update class", err)
	}
	return nil
}

// DeleteByID は指定IDの授業を削除する。
func (r *PostgresClassRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	return affected("failed to delete class", res, err)
}

// DeleteBySemesterIDs は指定学期群に属する授業を削除する。
func (r *PostgresClassRepo) DeleteBySemesterIDs(ctx context.Context, semesterIDs []string) (int64, error) {
	if len(semesterIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE semester_id = ANY($1)`, inIDs(semesterIDs))
	return affected("failed to delete classes by semester", res, err)
}

var _ ClassRepository = (*PostgresClassRepo)(nil)
