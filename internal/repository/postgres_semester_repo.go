package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresSemesterRepo はPostgreSQLを使用した学期リポジトリ。
type PostgresSemesterRepo struct {
	db database.DBTX
}

// NewPostgresSemesterRepo はPostgresSemesterRepoを生成する。
func NewPostgresSemesterRepo(db database.DBTX) *PostgresSemesterRepo {
	return &PostgresSemesterRepo{db: db}
}

const semesterColumns = `id, user_id, season, year, created_at, updated_at`

func scanSemester(row interface{ Scan(...any) error }) (*model.Semester, error) {
	s := &model.Semester{}
	err := row.Scan(&s.ID, &s.UserID, &s.Season, &s.Year, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// FindByID は指定IDの学期を取得する。見つからない場合はnilを返す。
func (r *PostgresSemesterRepo) FindByID(ctx context.Context, id string) (*model.Semester, error) {
	s, err := scanSemester(r.db.QueryRowContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find semester by ID: %w", err)
	}
	return s, nil
}

// ListByUserID はユーザーの学期を年度の降順で返す。
// 同一年度内は季節の並び（Spring, Summer, Fall, Winter）の逆順とする。
func (r *PostgresSemesterRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Semester, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters
		 WHERE user_id = $1
		 ORDER BY year DESC,
		   CASE season WHEN 'Winter' THEN 0 WHEN 'Fall' THEN 1 WHEN 'Summer' THEN 2 ELSE 3 END`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	defer rows.Close()

	semesters := []*model.Semester{}
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan semester: %w", err)
		}
		semesters = append(semesters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate semesters: %w", err)
	}
	return semesters, nil
}

// ListIDsByUserID はユーザーの学期IDを返す。
func (r *PostgresSemesterRepo) ListIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM semesters WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list semester IDs: %w", err)
	}
	ids, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan semester IDs: %w", err)
	}
	return ids, nil
}

// Create は学期を作成する。
func (r *PostgresSemesterRepo) Create(ctx context.Context, s *model.Semester) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO semesters (id, user_id, season, year, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.Season, s.Year, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert semester", err)
	}
	return nil
}

// Update は季節と年度を更新する。
func (r *PostgresSemesterRepo) Update(ctx context.Context, s *model.Semester) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE semesters SET season = $2, year = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Season, s.Year, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update semester", err)
	}
	return nil
}

// DeleteByID は指定IDの学期を削除する。
func (r *PostgresSemesterRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id)
	return affected("failed to delete semester", res, err)
}

// DeleteByUserID はユーザーの全学期を削除する。
func (r *PostgresSemesterRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE user_id = $1`, userID)
	return affected("failed to delete semesters by user", res, err)
}

var _ SemesterRepository = (*PostgresSemesterRepo)(nil)
