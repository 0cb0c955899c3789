package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// PostgresDistractionRepo はPostgreSQLを使用した中断記録リポジトリ。
type PostgresDistractionRepo struct {
	db database.DBTX
}

// NewPostgresDistractionRepo はPostgresDistractionRepoを生成する。
func NewPostgresDistractionRepo(db database.DBTX) *PostgresDistractionRepo {
	return &PostgresDistractionRepo{db: db}
}

const distractionColumns = `id, session_id, type, time_taken, created_at, updated_at`

func scanDistraction(row interface{ Scan(...any) error }) (*model.Distraction, error) {
	d := &model.Distraction{}
	err := row.Scan(&d.ID, &d.SessionID, &d.Type, &d.TimeTaken, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// FindByID は指定IDの中断記録を取得する。見つからない場合はnilを返す。
func (r *PostgresDistractionRepo) FindByID(ctx context.Context, id string) (*model.Distraction, error) {
	d, err := scanDistraction(r.db.QueryRowContext(ctx,
		`SELECT `+distractionColumns+` FROM distractions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find distraction by ID: %w", err)
	}
	return d, nil
}

// ListBySessionID はセッションの中断記録を作成順で返す。
func (r *PostgresDistractionRepo) ListBySessionID(ctx context.Context, sessionID string) ([]*model.Distraction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+distractionColumns+` FROM distractions WHERE session_id = $1 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list distractions: %w", err)
	}
	defer rows.Close()

	distractions := []*model.Distraction{}
	for rows.Next() {
		d, err := scanDistraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distraction: %w", err)
		}
		distractions = append(distractions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distractions: %w", err)
	}
	return distractions, nil
}

// DistinctTypesBySessionIDs は指定セッション群の中断種別を重複なく昇順で返す。
func (r *PostgresDistractionRepo) DistinctTypesBySessionIDs(ctx context.Context, sessionIDs []string) ([]string, error) {
	if len(sessionIDs) == 0 {
		return []string{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT type FROM distractions WHERE session_id = ANY($1) ORDER BY type`,
		inIDs(sessionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list distraction types: %w", err)
	}
	types, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan distraction types: %w", err)
	}
	return types, nil
}

// Create は中断記録を作成する。
func (r *PostgresDistractionRepo) Create(ctx context.Context, d *model.Distraction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO distractions (id, session_id, type, time_taken, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.SessionID, d.Type, d.TimeTaken, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to insert distraction", err)
	}
	return nil
}

// Update は種別と時間を更新する。
func (r *PostgresDistractionRepo) Update(ctx context.Context, d *model.Distraction) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE distractions SET type = $2, time_taken = $3, updated_at = $4 WHERE id = $1`,
		d.ID, d.Type, d.TimeTaken, d.UpdatedAt,
	)
	if err != nil {
		return wrapError("failed to update distraction", err)
	}
	return nil
}

// DeleteByID は指定IDの中断記録を削除する。
func (r *PostgresDistractionRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM distractions WHERE id = $1`, id)
	return affected("failed to delete distraction", res, err)
}

// DeleteBySessionIDs は指定セッション群の中断記録を削除する。
func (r *PostgresDistractionRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM distractions WHERE session_id = ANY($1)`, inIDs(sessionIDs))
	return affected("failed to delete distractions by session", res, err)
}

var _ DistractionRepository = (*PostgresDistractionRepo)(nil)
