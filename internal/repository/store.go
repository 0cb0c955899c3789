package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/studytrack/internal/database"
)

// PostgresStore はPostgreSQLを使用したStore実装。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore はPostgresStoreを生成する。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewRepositories は指定のDBTX（*sql.DB または *sql.Tx）に束縛したリポジトリ群を生成する。
func NewRepositories(db database.DBTX) Repositories {
	return Repositories{
		Users:        NewPostgresUserRepo(db),
		Semesters:    NewPostgresSemesterRepo(db),
		Classes:      NewPostgresClassRepo(db),
		Assignments:  NewPostgresAssignmentRepo(db),
		Sessions:     NewPostgresStudySessionRepo(db),
		Studies:      NewPostgresStudyRepo(db),
		Distractions: NewPostgresDistractionRepo(db),
		Works:        NewPostgresAssignmentWorkRepo(db),
	}
}

// Repos はトランザクション外で使用するリポジトリ群を返す。
func (s *PostgresStore) Repos() Repositories {
	return NewRepositories(s.db)
}

// InTx はfnを単一トランザクション内で実行する。
func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// Records は集計入力の読み出しリポジトリを返す。
func (s *PostgresStore) Records() *PostgresRecordRepo {
	return NewPostgresRecordRepo(s.db)
}

var _ Store = (*PostgresStore)(nil)
