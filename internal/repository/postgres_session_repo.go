package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresStudySessionRepo はPostgreSQLを使用した学習セッションリポジトリ。
type PostgresStudySessionRepo struct {
	db database.DBTX
}

// NewPostgresStudySessionRepo はPostgresStudySessionRepoを生成する。
func NewPostgresStudySessionRepo(db database.DBTX) *PostgresStudySessionRepo {
	return &PostgresStudySessionRepo{db: db}
}

const sessionColumns = `id, user_id, title, datetime, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.StudySession, error) {
	s := &model.StudySession{}
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Datetime, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresStudySessionRepo) FindByID(ctx context.Context, id string) (*model.StudySession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find study session by ID: %w", err)
	}
	return s, nil
}

// ListByUserID はユーザーのセッションを日時の降順で返す。
func (r *PostgresStudySessionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.StudySession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE user_id = $1 ORDER BY datetime DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*model.StudySession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}
	return sessions, nil
}

// ListIDsByUserID はユーザーのセッションIDを返す。
func (r *PostgresStudySessionRepo) ListIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM study_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list study session IDs: %w", err)
	}
	ids, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan study session IDs: %w", err)
	}
	return ids, nil
}

// Create はセッションを作成する。
func (r *PostgresStudySessionRepo) Create(ctx context.Context, s *model.StudySession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO study_sessions (id, user_id, title, datetime, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.Title, s.Datetime, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert study session", err)
	}
	return nil
}

// Update はタイトルと日時を更新する。
func (r *PostgresStudySessionRepo) Update(ctx context.Context, s *model.StudySession) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE study_sessions SET title = $2, datetime = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Title, s.Datetime, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update study session", err)
	}
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *PostgresStudySessionRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = $1`, id)
	return affected("failed to delete study session", res, err)
}

// DeleteByUserID はユーザーの全セッションを削除する。
func (r *PostgresStudySessionRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE user_id = $1`, userID)
	return affected("failed to delete study sessions by user", res, err)
}

var _ StudySessionRepository = (*PostgresStudySessionRepo)(nil)
