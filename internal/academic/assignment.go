package academic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/studytrack/internal/cascade"
	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/ownership"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/validate"
)

const maxAssignmentTitleLength = 200

// AssignmentInput は課題の作成・更新リクエスト。
type AssignmentInput struct {
	ClassID *string `json:"classId"`
	Title   *string `json:"title"`
}

func titleRule(value *string, required bool) validate.Rule {
	return validate.Rule{Field: "title", Kind: validate.String, Value: value, Required: required,
		NotBlank: true, MinLen: 1, MaxLen: maxAssignmentTitleLength}
}

// ListAssignments は指定授業の課題を返す。授業が存在しないか他ユーザー所有の場合はNOT_FOUND。
func (s *Service) ListAssignments(ctx context.Context, userID, classID string) ([]*model.Assignment, error) {
	if err := checkID("classId", classID); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if err := resolver(repos).RequireOwned(ctx, ownership.Class, classID, userID); err != nil {
		return nil, err
	}
	assignments, err := repos.Assignments.ListByClassIDs(ctx, []string{classID})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListMyAssignments はユーザーの全授業の課題を所属授業付きで返す。
func (s *Service) ListMyAssignments(ctx context.Context, userID string) ([]*model.AssignmentWithClass, error) {
	repos := s.store.Repos()
	classIDs, err := resolver(repos).ResolveOwnedClassIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	assignments, err := repos.Assignments.ListWithClassByClassIDs(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateAssignment は授業に課題を追加する。
func (s *Service) CreateAssignment(ctx context.Context, userID string, in AssignmentInput) (*model.Assignment, error) {
	err := validate.Err(validate.Check(
		validate.Rule{Field: "classId", Kind: validate.ID, Value: in.ClassID, Required: true},
		titleRule(in.Title, true),
	))
	if err != nil {
		return nil, err
	}

	now := s.now()
	assignment := &model.Assignment{
		ID:        uuid.NewString(),
		ClassID:   *in.ClassID,
		Title:     s.sanitizer.Clean(*in.Title, maxAssignmentTitleLength),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if assignment.Title == "" {
		return nil, validate.Err([]string{"title cannot be empty"})
	}

	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireOwned(ctx, ownership.Class, assignment.ClassID, userID); err != nil {
			return err
		}
		if err := repos.Assignments.Create(ctx, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// UpdateAssignment は課題のタイトルを更新する。
func (s *Service) UpdateAssignment(ctx context.Context, userID, assignmentID string, in AssignmentInput) (*model.Assignment, error) {
	if err := checkID("id", assignmentID); err != nil {
		return nil, err
	}
	if err := validate.Err(validate.Check(titleRule(in.Title, true))); err != nil {
		return nil, err
	}
	title := s.sanitizer.Clean(*in.Title, maxAssignmentTitleLength)
	if title == "" {
		return nil, validate.Err([]string{"title cannot be empty"})
	}

	var updated *model.Assignment
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireAccess(ctx, ownership.Assignment, assignmentID, userID); err != nil {
			return err
		}
		assignment, err := repos.Assignments.FindByID(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("find assignment: %w", err)
		}
		assignment.Title = title
		assignment.UpdatedAt = s.now()
		if err := repos.Assignments.Update(ctx, assignment); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAssignment は課題と課題作業を削除する。
func (s *Service) DeleteAssignment(ctx context.Context, userID, assignmentID string) error {
	if err := checkID("id", assignmentID); err != nil {
		return err
	}

	var report cascade.Report
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireAccess(ctx, ownership.Assignment, assignmentID, userID); err != nil {
			return err
		}
		var err error
		report, err = cascade.DeleteAssignment(ctx, repos, assignmentID)
		return err
	})
	if err != nil {
		return err
	}

	logCascade(ctx, "assignment deleted", userID, report)
	return nil
}
