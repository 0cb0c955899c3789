// Package cascade は親エンティティ削除時の依存レコード削除を明示的な順序で実行する。
//
// 削除は常に葉から親へ向かう:
//
//	AssignmentWork → Assignment → Class → Semester
//	Study / Distraction / AssignmentWork → StudySession
//	（上記すべて）→ User
//
// 呼び出し側はトランザクションに束縛したRepositoriesを渡すこと。
// 途中で失敗した場合、トランザクションのロールバックで全削除が取り消される。
package cascade

import (
	"context"
	"fmt"

	"github.com/hitoshi/studytrack/internal/repository"
)

// Report は削除した行数をエンティティごとに保持する。
type Report struct {
	Users        int64
	Semesters    int64
	Classes      int64
	Assignments  int64
	Sessions     int64
	Studies      int64
	Distractions int64
	Works        int64
}

// LogAttrs はslogに渡すためのキーと値の並びを返す。
func (r Report) LogAttrs() []any {
	return []any{
		"users", r.Users,
		"semesters", r.Semesters,
		"classes", r.Classes,
		"assignments", r.Assignments,
		"sessions", r.Sessions,
		"studies", r.Studies,
		"distractions", r.Distractions,
		"works", r.Works,
	}
}

// DeleteUser はユーザーと所有する全レコードを削除する。
func DeleteUser(ctx context.Context, repos repository.Repositories, userID string) (Report, error) {
	var rep Report

	semesterIDs, err := repos.Semesters.ListIDsByUserID(ctx, userID)
	if err != nil {
		return rep, fmt.Errorf("cascade user: %w", err)
	}
	if err := deleteSemesterChildren(ctx, repos, semesterIDs, &rep); err != nil {
		return rep, err
	}
	if rep.Semesters, err = repos.Semesters.DeleteByUserID(ctx, userID); err != nil {
		return rep, fmt.Errorf("cascade user: %w", err)
	}

	sessionIDs, err := repos.Sessions.ListIDsByUserID(ctx, userID)
	if err != nil {
		return rep, fmt.Errorf("cascade user: %w", err)
	}
	if err := deleteSessionChildren(ctx, repos, sessionIDs, &rep); err != nil {
		return rep, err
	}
	if rep.Sessions, err = repos.Sessions.DeleteByUserID(ctx, userID); err != nil {
		return rep, fmt.Errorf("cascade user: %w", err)
	}

	if rep.Users, err = repos.Users.DeleteByID(ctx, userID); err != nil {
		return rep, fmt.Errorf("cascade user: %w", err)
	}
	return rep, nil
}

// DeleteSemester は学期と配下の授業・課題・課題作業を削除する。
func DeleteSemester(ctx context.Context, repos repository.Repositories, semesterID string) (Report, error) {
	var rep Report
	ids := []string{semesterID}
	if err := deleteSemesterChildren(ctx, repos, ids, &rep); err != nil {
		return rep, err
	}
	n, err := repos.Semesters.DeleteByID(ctx, semesterID)
	if err != nil {
		return rep, fmt.Errorf("cascade semester: %w", err)
	}
	rep.Semesters = n
	return rep, nil
}

// DeleteClass は授業と配下の課題・課題作業を削除する。
func DeleteClass(ctx context.Context, repos repository.Repositories, classID string) (Report, error) {
	var rep Report
	if err := deleteClassChildren(ctx, repos, []string{classID}, &rep); err != nil {
		return rep, err
	}
	n, err := repos.Classes.DeleteByID(ctx, classID)
	if err != nil {
		return rep, fmt.Errorf("cascade class: %w", err)
	}
	rep.Classes = n
	return rep, nil
}

// DeleteAssignment は課題とそれを対象とする課題作業を削除する。
func DeleteAssignment(ctx context.Context, repos repository.Repositories, assignmentID string) (Report, error) {
	var rep Report
	var err error
	if rep.Works, err = repos.Works.DeleteByAssignmentIDs(ctx, []string{assignmentID}); err != nil {
		return rep, fmt.Errorf("cascade assignment: %w", err)
	}
	if rep.Assignments, err = repos.Assignments.DeleteByID(ctx, assignmentID); err != nil {
		return rep, fmt.Errorf("cascade assignment: %w", err)
	}
	return rep, nil
}

// DeleteSession はセッションと配下の学習記録・中断記録・課題作業を削除する。
func DeleteSession(ctx context.Context, repos repository.Repositories, sessionID string) (Report, error) {
	var rep Report
	if err := deleteSessionChildren(ctx, repos, []string{sessionID}, &rep); err != nil {
		return rep, err
	}
	n, err := repos.Sessions.DeleteByID(ctx, sessionID)
	if err != nil {
		return rep, fmt.Errorf("cascade session: %w", err)
	}
	rep.Sessions = n
	return rep, nil
}

func deleteSemesterChildren(ctx context.Context, repos repository.Repositories, semesterIDs []string, rep *Report) error {
	if len(semesterIDs) == 0 {
		return nil
	}
	classIDs, err := repos.Classes.ListIDsBySemesterIDs(ctx, semesterIDs)
	if err != nil {
		return fmt.Errorf("cascade semesters: %w", err)
	}
	if err := deleteClassChildren(ctx, repos, classIDs, rep); err != nil {
		return err
	}
	n, err := repos.Classes.DeleteBySemesterIDs(ctx, semesterIDs)
	if err != nil {
		return fmt.Errorf("cascade semesters: %w", err)
	}
	rep.Classes += n
	return nil
}

func deleteClassChildren(ctx context.Context, repos repository.Repositories, classIDs []string, rep *Report) error {
	if len(classIDs) == 0 {
		return nil
	}
	assignmentIDs, err := repos.Assignments.ListIDsByClassIDs(ctx, classIDs)
	if err != nil {
		return fmt.Errorf("cascade classes: %w", err)
	}
	n, err := repos.Works.DeleteByAssignmentIDs(ctx, assignmentIDs)
	if err != nil {
		return fmt.Errorf("cascade classes: %w", err)
	}
	rep.Works += n
	if n, err = repos.Assignments.DeleteByClassIDs(ctx, classIDs); err != nil {
		return fmt.Errorf("cascade classes: %w", err)
	}
	rep.Assignments += n
	return nil
}

func deleteSessionChildren(ctx context.Context, repos repository.Repositories, sessionIDs []string, rep *Report) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	n, err := repos.Studies.DeleteBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return fmt.Errorf("cascade sessions: %w", err)
	}
	rep.Studies += n
	if n, err = repos.Distractions.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return fmt.Errorf("cascade sessions: %w", err)
	}
	rep.Distractions += n
	if n, err = repos.Works.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
		return fmt.Errorf("cascade sessions: %w", err)
	}
	rep.Works += n
	return nil
}
