// Package ownership は所有チェーンを辿ってユーザーごとのアクセス範囲を解決する。
//
// 所有チェーン:
//
//	Class → Semester → User
//	Assignment → Class → Semester → User
//	Study / Distraction / AssignmentWork → StudySession → User
package ownership

import (
	"context"
	"fmt"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
)

// Kind は所有チェーンを持つエンティティ種別。
type Kind int

const (
	Semester Kind = iota
	Class
	Assignment
	Session
	Study
	Distraction
	Work
)

// Resource はエラーメッセージに使用するリソース名を返す。
func (k Kind) Resource() string {
	switch k {
	case Semester:
		return "Semester"
	case Class:
		return "Class"
	case Assignment:
		return "Assignment"
	case Session:
		return "Session"
	case Study:
		return "Study entry"
	case Distraction:
		return "Distraction"
	case Work:
		return "Assignment work"
	}
	return "Resource"
}

// Resolver は所有関係を解決する。
// トランザクション内で使用する場合はトランザクションに束縛したRepositoriesを渡す。
type Resolver struct {
	repos repository.Repositories
}

// New はResolverを生成する。
func New(repos repository.Repositories) *Resolver {
	return &Resolver{repos: repos}
}

// ResolveOwnedSemesterIDs はユーザーが所有する学期IDを返す。
func (r *Resolver) ResolveOwnedSemesterIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.repos.Semesters.ListIDsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owned semesters: %w", err)
	}
	return ids, nil
}

// ResolveOwnedClassIDs はユーザーが所有する授業IDを返す。
// 学期が1件もなければ授業は問い合わせずに空を返す。
func (r *Resolver) ResolveOwnedClassIDs(ctx context.Context, userID string) ([]string, error) {
	semesterIDs, err := r.ResolveOwnedSemesterIDs(ctx, userID)
	if err != nil || len(semesterIDs) == 0 {
		return []string{}, err
	}
	ids, err := r.repos.Classes.ListIDsBySemesterIDs(ctx, semesterIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve owned classes: %w", err)
	}
	return ids, nil
}

// ResolveOwnedAssignmentIDs はユーザーが所有する課題IDを返す。
func (r *Resolver) ResolveOwnedAssignmentIDs(ctx context.Context, userID string) ([]string, error) {
	classIDs, err := r.ResolveOwnedClassIDs(ctx, userID)
	if err != nil || len(classIDs) == 0 {
		return []string{}, err
	}
	ids, err := r.repos.Assignments.ListIDsByClassIDs(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve owned assignments: %w", err)
	}
	return ids, nil
}

// ResolveOwnedSessionIDs はユーザーが所有する学習セッションIDを返す。
func (r *Resolver) ResolveOwnedSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.repos.Sessions.ListIDsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owned sessions: %w", err)
	}
	return ids, nil
}

// OwnerOf は指定エンティティの所有ユーザーIDを返す。
// エンティティまたはチェーン上の親が存在しない場合はfound=falseを返す。
func (r *Resolver) OwnerOf(ctx context.Context, kind Kind, id string) (ownerID string, found bool, err error) {
	switch kind {
	case Semester:
		s, err := r.repos.Semesters.FindByID(ctx, id)
		if err != nil || s == nil {
			return "", false, err
		}
		return s.UserID, true, nil
	case Class:
		c, err := r.repos.Classes.FindByID(ctx, id)
		if err != nil || c == nil {
			return "", false, err
		}
		return r.OwnerOf(ctx, Semester, c.SemesterID)
	case Assignment:
		a, err := r.repos.Assignments.FindByID(ctx, id)
		if err != nil || a == nil {
			return "", false, err
		}
		return r.OwnerOf(ctx, Class, a.ClassID)
	case Session:
		s, err := r.repos.Sessions.FindByID(ctx, id)
		if err != nil || s == nil {
			return "", false, err
		}
		return s.UserID, true, nil
	case Study:
		s, err := r.repos.Studies.FindByID(ctx, id)
		if err != nil || s == nil {
			return "", false, err
		}
		return r.OwnerOf(ctx, Session, s.SessionID)
	case Distraction:
		d, err := r.repos.Distractions.FindByID(ctx, id)
		if err != nil || d == nil {
			return "", false, err
		}
		return r.OwnerOf(ctx, Session, d.SessionID)
	case Work:
		w, err := r.repos.Works.FindByID(ctx, id)
		if err != nil || w == nil {
			return "", false, err
		}
		return r.OwnerOf(ctx, Session, w.SessionID)
	}
	return "", false, fmt.Errorf("unknown entity kind: %d", kind)
}

// VerifyOwnership は指定エンティティの所有チェーンがuserIDで終端するかを返す。
func (r *Resolver) VerifyOwnership(ctx context.Context, kind Kind, id, userID string) (bool, error) {
	owner, found, err := r.OwnerOf(ctx, kind, id)
	if err != nil {
		return false, fmt.Errorf("verify ownership of %s: %w", kind.Resource(), err)
	}
	return found && owner == userID, nil
}

// RequireOwned はエンティティが存在しuserIDに所有されていることを要求する。
// 存在しない場合と他ユーザー所有の場合を区別せずNOT_FOUNDを返す。
func (r *Resolver) RequireOwned(ctx context.Context, kind Kind, id, userID string) error {
	ok, err := r.VerifyOwnership(ctx, kind, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewNotFoundError(kind.Resource())
	}
	return nil
}

// RequireAccess は更新・削除対象のエンティティに対するアクセスを検証する。
// 存在しない場合はNOT_FOUND、他ユーザー所有の場合はFORBIDDENを返す。
func (r *Resolver) RequireAccess(ctx context.Context, kind Kind, id, userID string) error {
	owner, found, err := r.OwnerOf(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("verify ownership of %s: %w", kind.Resource(), err)
	}
	if !found {
		return model.NewNotFoundError(kind.Resource())
	}
	if owner != userID {
		return model.NewForbiddenError(kind.Resource())
	}
	return nil
}
