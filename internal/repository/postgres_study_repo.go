package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresStudyRepo はPostgreSQLを使用した学習記録リポジトリ。
type PostgresStudyRepo struct {
	db database.DBTX
}

// NewPostgresStudyRepo はPostgresStudyRepoを生成する。
func NewPostgresStudyRepo(db database.DBTX) *PostgresStudyRepo {
	return &PostgresStudyRepo{db: db}
}

const studyColumns = `id, session_id, what, understanding, time, created_at, updated_at`

func scanStudy(row interface{ Scan(...any) error }) (*model.Study, error) {
	s := &model.Study{}
	err := row.Scan(&s.ID, &s.SessionID, &s.What, &s.Understanding, &s.Time, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// FindByID は指定IDの学習記録を取得する。見つからない場合はnilを返す。
func (r *PostgresStudyRepo) FindByID(ctx context.Context, id string) (*model.Study, error) {
	s, err := scanStudy(r.db.QueryRowContext(ctx,
		`SELECT `+studyColumns+` FROM studies WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find study by ID: %w", err)
	}
	return s, nil
}

// ListBySessionID はセッションの学習記録を作成順で返す。
func (r *PostgresStudyRepo) ListBySessionID(ctx context.Context, sessionID string) ([]*model.Study, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studyColumns+` FROM studies WHERE session_id = $1 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	defer rows.Close()

	studies := []*model.Study{}
	for rows.Next() {
		s, err := scanStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study: %w", err)
		}
		studies = append(studies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate studies: %w", err)
	}
	return studies, nil
}

// Create は学習記録を作成する。
func (r *PostgresStudyRepo) Create(ctx context.Context, s *model.Study) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO studies (id, session_id, what, understanding, time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.SessionID, s.What, s.Understanding, s.Time, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert study", err)
	}
	return nil
}

// Update は学習内容・理解度・時間を更新する。
func (r *PostgresStudyRepo) Update(ctx context.Context, s *model.Study) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE studies SET what = $2, understanding = $3, time = $4, updated_at = $5 WHERE id = $1`,
		s.ID, s.What, s.Understanding, s.Time, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update study", err)
	}
	return nil
}

// DeleteByID は指定IDの学習記録を削除する。
func (r *PostgresStudyRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id)
	return affected("failed to delete study", res, err)
}

// DeleteBySessionIDs は指定セッション群の学習記録を削除する。
func (r *PostgresStudyRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM studies WHERE session_id = ANY($1)`, inIDs(sessionIDs))
	return affected("failed to delete studies by session", res, err)
}

var _ StudyRepository = (*PostgresStudyRepo)(nil)
