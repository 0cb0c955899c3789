package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/studytrack/internal/database"
	"github.com/hitoshi/studytrack/internal/model"
)

// snapshotTxOptions は集計読み出し用のトランザクション設定。
// 4つのテーブルを同一スナップショットから読むためREPEATABLE READを使用する。
var snapshotTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// PostgresRecordRepo はPostgreSQLを使用した集計入力の読み出しリポジトリ。
type PostgresRecordRepo struct {
	db database.TxBeginner
}

// NewPostgresRecordRepo はPostgresRecordRepoを生成する。
func NewPostgresRecordRepo(db database.TxBeginner) *PostgresRecordRepo {
	return &PostgresRecordRepo{db: db}
}

// ListSessionRecords はユーザーの全セッションを子レコードとLEFT JOINして返す。
// セッションは日時の昇順で返す。子レコードが無いセッションも空スライスで含まれる。
func (r *PostgresRecordRepo) ListSessionRecords(ctx context.Context, userID string) ([]model.SessionRecord, error) {
	var records []model.SessionRecord
	err := database.WithTx(ctx, r.db, snapshotTxOptions, func(ctx context.Context, tx database.DBTX) error {
		var err error
		records, err = loadSessionRecords(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func loadSessionRecords(ctx context.Context, tx database.DBTX, userID string) ([]model.SessionRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, title, datetime FROM study_sessions
		 WHERE user_id = $1 ORDER BY datetime, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session records: %w", err)
	}

	records := []model.SessionRecord{}
	index := map[string]int{}
	for rows.Next() {
		rec := model.SessionRecord{
			Distractions: []model.DistractionRecord{},
			Works:        []model.WorkRecord{},
			Studies:      []model.StudyRecord{},
		}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Datetime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate session records: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	sessionIDs := make([]string, len(records))
	for i, rec := range records {
		sessionIDs[i] = rec.ID
	}

	if err := loadDistractionRecords(ctx, tx, sessionIDs, records, index); err != nil {
		return nil, err
	}
	if err := loadWorkRecords(ctx, tx, sessionIDs, records, index); err != nil {
		return nil, err
	}
	if err := loadStudyRecords(ctx, tx, sessionIDs, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func loadDistractionRecords(ctx context.Context, tx database.DBTX, sessionIDs []string, records []model.SessionRecord, index map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, type, time_taken FROM distractions
		 WHERE session_id = ANY($1) ORDER BY created_at, id`, inIDs(sessionIDs))
	if err != nil {
		return fmt.Errorf("failed to query distraction records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.DistractionRecord
		var sessionID string
		if err := rows.Scan(&d.ID, &sessionID, &d.Type, &d.TimeTaken); err != nil {
			return fmt.Errorf("failed to scan distraction record: %w", err)
		}
		if i, ok := index[sessionID]; ok {
			records[i].Distractions = append(records[i].Distractions, d)
		}
	}
	return rows.Err()
}

func loadWorkRecords(ctx context.Context, tx database.DBTX, sessionIDs []string, records []model.SessionRecord, index map[string]int) error {
	// 課題・授業はINNER JOIN。参照整合性はcascade削除と外部キーで保証される。
	rows, err := tx.QueryContext(ctx,
		`SELECT w.id, w.session_id, w.time, a.id, a.title, c.id, c.class_code, c.professor
		 FROM assignment_works w
		 JOIN assignments a ON a.id = w.assignment_id
		 JOIN classes c ON c.id = a.class_id
		 WHERE w.session_id = ANY($1)
		 ORDER BY w.created_at, w.id`, inIDs(sessionIDs))
	if err != nil {
		return fmt.Errorf("failed to query work records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w model.WorkRecord
		var sessionID string
		err := rows.Scan(&w.ID, &sessionID, &w.Time,
			&w.Assignment.ID, &w.Assignment.Title,
			&w.Assignment.Class.ID, &w.Assignment.Class.ClassCode, &w.Assignment.Class.Professor)
		if err != nil {
			return fmt.Errorf("failed to scan work record: %w", err)
		}
		if i, ok := index[sessionID]; ok {
			records[i].Works = append(records[i].Works, w)
		}
	}
	return rows.Err()
}

func loadStudyRecords(ctx context.Context, tx database.DBTX, sessionIDs []string, records []model.SessionRecord, index map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, what, understanding, time FROM studies
		 WHERE session_id = ANY($1) ORDER BY created_at, id`, inIDs(sessionIDs))
	if err != nil {
		return fmt.Errorf("failed to query study records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.StudyRecord
		var sessionID string
		if err := rows.Scan(&s.ID, &sessionID, &s.What, &s.Understanding, &s.Time); err != nil {
			return fmt.Errorf("failed to scan study record: %w", err)
		}
		if i, ok := index[sessionID]; ok {
			records[i].Studies = append(records[i].Studies, s)
		}
	}
	return rows.Err()
}

var _ RecordRepository = (*PostgresRecordRepo)(nil)
