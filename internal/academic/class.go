package academic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/studytrack/internal/cascade"
	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/ownership"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/validate"
)

const maxClassFieldLength = 50

// ClassInput は授業の作成・更新リクエスト。
// ClassCode はJSON上 "classId"（例: "CS180"）。
type ClassInput struct {
	ClassCode  *string `json:"classId"`
	Professor  *string `json:"professor"`
	Grade      *string `json:"grade"`
	SemesterID *string `json:"semesterId"`
}

// ListClasses は指定学期の授業を返す。学期が存在しないか他ユーザー所有の場合はNOT_FOUND。
func (s *Service) ListClasses(ctx context.Context, userID, semesterID string) ([]*model.Class, error) {
	if err := checkID("semesterId", semesterID); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if err := resolver(repos).RequireOwned(ctx, ownership.Semester, semesterID, userID); err != nil {
		return nil, err
	}
	classes, err := repos.Classes.ListBySemesterIDs(ctx, []string{semesterID})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListMyClasses はユーザーの全学期の授業を返す。
func (s *Service) ListMyClasses(ctx context.Context, userID string) ([]*model.Class, error) {
	repos := s.store.Repos()
	semesterIDs, err := resolver(repos).ResolveOwnedSemesterIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	classes, err := repos.Classes.ListBySemesterIDs(ctx, semesterIDs)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// CreateClass は学期に授業を追加する。同じ学期に同じ授業コードがある場合はCONFLICT。
func (s *Service) CreateClass(ctx context.Context, userID string, in ClassInput) (*model.Class, error) {
	err := validate.Err(validate.Check(
		validate.Rule{Field: "classId", Kind: validate.String, Value: in.ClassCode, Required: true,
			NotBlank: true, MinLen: 1, MaxLen: maxClassFieldLength},
		validate.Rule{Field: "professor", Kind: validate.String, Value: in.Professor, Required: true,
			NotBlank: true, MinLen: 1, MaxLen: maxClassFieldLength},
		validate.Rule{Field: "grade", Kind: validate.String, Value: in.Grade, MaxLen: maxClassFieldLength},
		validate.Rule{Field: "semesterId", Kind: validate.ID, Value: in.SemesterID, Required: true},
	))
	if err != nil {
		return nil, err
	}

	now := s.now()
	class := &model.Class{
		ID:         uuid.NewString(),
		SemesterID: *in.SemesterID,
		ClassCode:  s.sanitizer.Clean(*in.ClassCode, maxClassFieldLength),
		Professor:  s.sanitizer.Clean(*in.Professor, maxClassFieldLength),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Grade != nil {
		class.Grade = s.sanitizer.Clean(*in.Grade, maxClassFieldLength)
	}
	if class.ClassCode == "" || class.Professor == "" {
		return nil, validate.Err([]string{"classId and professor cannot be empty"})
	}

	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireOwned(ctx, ownership.Semester, class.SemesterID, userID); err != nil {
			return err
		}
		if err := repos.Classes.Create(ctx, class); err != nil {
			return conflictOn(err, fmt.Sprintf("Class %s already exists in this semester", class.ClassCode))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// UpdateClass は空白でないフィールドのみ更新する。
// 授業が存在しない場合はNOT_FOUND、他ユーザー所有の場合はFORBIDDEN。
func (s *Service) UpdateClass(ctx context.Context, userID, classID string, in ClassInput) (*model.Class, error) {
	if err := checkID("id", classID); err != nil {
		return nil, err
	}
	err := validate.Err(validate.Check(
		validate.Rule{Field: "classId", Kind: validate.String, Value: in.ClassCode, MaxLen: maxClassFieldLength},
		validate.Rule{Field: "professor", Kind: validate.String, Value: in.Professor, MaxLen: maxClassFieldLength},
		validate.Rule{Field: "grade", Kind: validate.String, Value: in.Grade, MaxLen: maxClassFieldLength},
	))
	if err != nil {
		return nil, err
	}

	var updated *model.Class
	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireAccess(ctx, ownership.Class, classID, userID); err != nil {
			return err
		}
		class, err := repos.Classes.FindByID(ctx, classID)
		if err != nil {
			return fmt.Errorf("find class: %w", err)
		}

		s.applyNonBlank(&class.ClassCode, in.ClassCode)
		s.applyNonBlank(&class.Professor, in.Professor)
		s.applyNonBlank(&class.Grade, in.Grade)
		class.UpdatedAt = s.now()

		if err := repos.Classes.Update(ctx, class); err != nil {
			return conflictOn(err, fmt.Sprintf("Class %s already exists in this semester", class.ClassCode))
		}
		updated = class
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyNonBlank はvが空白以外の場合にサニタイズしてdstへ設定する。
func (s *Service) applyNonBlank(dst *string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return
	}
	if cleaned := s.sanitizer.Clean(*v, maxClassFieldLength); cleaned != "" {
		*dst = cleaned
	}
}

// DeleteClass は授業と配下の課題・課題作業を削除する。
func (s *Service) DeleteClass(ctx context.Context, userID, classID string) error {
	if err := checkID("id", classID); err != nil {
		return err
	}

	var report cascade.Report
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireAccess(ctx, ownership.Class, classID, userID); err != nil {
			return err
		}
		var err error
		report, err = cascade.DeleteClass(ctx, repos, classID)
		return err
	})
	if err != nil {
		return err
	}

	logCascade(ctx, "class deleted", userID, report)
	return nil
}
