// Package repository はデータ永続化のインターフェースとPostgreSQL実装を定義する。
//
// 単一行の取得系メソッドは、見つからない場合にnilを返す（エラーにはしない）。
// 一意制約違反は ErrDuplicate でラップして返す。
package repository

import (
	"context"

	"github.com/hitoshi/studytrack/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
	// UpdateProfile は入学年度と学校名を更新する。
	UpdateProfile(ctx context.Context, user *model.User) error
	// DeleteByID は指定IDのユーザーを削除し、削除件数を返す。
	DeleteByID(ctx context.Context, id string) (int64, error)
}

// SemesterRepository は学期データの永続化インターフェース。
type SemesterRepository interface {
	FindByID(ctx context.Context, id string) (*model.Semester, error)
	// ListByUserID はユーザーの学期を年度の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Semester, error)
	ListIDsByUserID(ctx context.Context, userID string) ([]string, error)
	// Create は学期を作成する。(user, season, year) が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, semester *model.Semester) error
	Update(ctx context.Context, semester *model.Semester) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// ClassRepository は授業データの永続化インターフェース。
type ClassRepository interface {
	FindByID(ctx context.Context, id string) (*model.Class, error)
	// ListBySemesterIDs は指定学期群に属する授業を返す。semesterIDsが空の場合は空を返す。
	ListBySemesterIDs(ctx context.Context, semesterIDs []string) ([]*model.Class, error)
	ListIDsBySemesterIDs(ctx context.Context, semesterIDs []string) ([]string, error)
	// Create は授業を作成する。(semester, class_code) が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, class *model.Class) error
	Update(ctx context.Context, class *model.Class) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteBySemesterIDs(ctx context.Context, semesterIDs []string) (int64, error)
}

// AssignmentRepository は課題データの永続化インターフェース。
type AssignmentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByClassIDs(ctx context.Context, classIDs []string) ([]*model.Assignment, error)
	// ListWithClassByClassIDs は課題を所属授業と結合して返す。
	ListWithClassByClassIDs(ctx context.Context, classIDs []string) ([]*model.AssignmentWithClass, error)
	ListIDsByClassIDs(ctx context.Context, classIDs []string) ([]string, error)
	Create(ctx context.Context, assignment *model.Assignment) error
	Update(ctx context.Context, assignment *model.Assignment) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByClassIDs(ctx context.Context, classIDs []string) (int64, error)
}

// StudySessionRepository は学習セッションの永続化インターフェース。
type StudySessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.StudySession, error)
	// ListByUserID はユーザーのセッションを日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.StudySession, error)
	ListIDsByUserID(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, session *model.StudySession) error
	Update(ctx context.Context, session *model.StudySession) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// StudyRepository は学習記録の永続化インターフェース。
type StudyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Study, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]*model.Study, error)
	Create(ctx context.Context, study *model.Study) error
	Update(ctx context.Context, study *model.Study) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error)
}

// DistractionRepository は中断記録の永続化インターフェース。
type DistractionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Distraction, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]*model.Distraction, error)
	// DistinctTypesBySessionIDs は指定セッション群に記録された中断種別を重複なく昇順で返す。
	DistinctTypesBySessionIDs(ctx context.Context, sessionIDs []string) ([]string, error)
	Create(ctx context.Context, distraction *model.Distraction) error
	Update(ctx context.Context, distraction *model.Distraction) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error)
}

// AssignmentWorkRepository は課題作業記録の永続化インターフェース。
type AssignmentWorkRepository interface {
	FindByID(ctx context.Context, id string) (*model.AssignmentWork, error)
	// FindWithAssignmentByID は課題作業を対象課題と結合して取得する。
	FindWithAssignmentByID(ctx context.Context, id string) (*model.AssignmentWorkWithAssignment, error)
	ListWithAssignmentBySessionID(ctx context.Context, sessionID string) ([]*model.AssignmentWorkWithAssignment, error)
	// Create は課題作業を作成する。(assignment, session) が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, work *model.AssignmentWork) error
	Update(ctx context.Context, work *model.AssignmentWork) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []string) (int64, error)
	DeleteByAssignmentIDs(ctx context.Context, assignmentIDs []string) (int64, error)
}

// RecordRepository は集計用の結合済みセッション行を読み出すインターフェース。
type RecordRepository interface {
	// ListSessionRecords はユーザーの全セッションを中断・課題作業（課題・授業付き）・
	// 学習記録とLEFT JOINして返す。全コレクションを同一スナップショットから読む。
	ListSessionRecords(ctx context.Context, userID string) ([]model.SessionRecord, error)
}

// Repositories はエンティティごとのリポジトリをまとめたもの。
// トランザクション内では全リポジトリが同一のトランザクションを共有する。
type Repositories struct {
	Users        UserRepository
	Semesters    SemesterRepository
	Classes      ClassRepository
	Assignments  AssignmentRepository
	Sessions     StudySessionRepository
	Studies      StudyRepository
	Distractions DistractionRepository
	Works        AssignmentWorkRepository
}

// Store はリポジトリ群とトランザクション境界を提供する。
type Store interface {
	// Repos はトランザクション外で使用するリポジトリ群を返す。
	Repos() Repositories
	// InTx はfnを単一トランザクション内で実行する。fnがエラーを返した場合は全ての書き込みを取り消す。
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
