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

const (
	minYear = 1900
	maxYear = 2100
)

// SemesterInput は学期の作成・更新リクエスト。
type SemesterInput struct {
	Season *string  `json:"season"`
	Year   *float64 `json:"year"`
}

func seasonNames() []string {
	names := make([]string, 0, len(model.Seasons))
	for _, s := range model.Seasons {
		names = append(names, string(s))
	}
	return names
}

func (in SemesterInput) check(required bool) error {
	return validate.Err(validate.Check(
		validate.Rule{Field: "season", Kind: validate.String, Value: in.Season, Required: required, Enum: seasonNames()},
		validate.Rule{Field: "year", Kind: validate.Int, Value: in.Year, Required: required,
			Range: &validate.Range{Min: minYear, Max: maxYear}},
	))
}

// ListSemesters はユーザーの学期を年度の降順で返す。
func (s *Service) ListSemesters(ctx context.Context, userID string) ([]*model.Semester, error) {
	semesters, err := s.store.Repos().Semesters.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// CreateSemester は学期を作成する。同じ季節・年度の学期が既にある場合はCONFLICTを返す。
func (s *Service) CreateSemester(ctx context.Context, userID string, in SemesterInput) (*model.Semester, error) {
	if err := in.check(true); err != nil {
		return nil, err
	}

	now := s.now()
	semester := &model.Semester{
		ID:        uuid.NewString(),
		UserID:    userID,
		Season:    model.Season(*in.Season),
		Year:      validate.IntValue(in.Year),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Repos().Semesters.Create(ctx, semester); err != nil {
		return nil, conflictOn(err, "Semester already exists")
	}
	return semester, nil
}

// UpdateSemester は指定されたフィールドのみ更新する。
func (s *Service) UpdateSemester(ctx context.Context, userID, semesterID string, in SemesterInput) (*model.Semester, error) {
	if err := checkID("id", semesterID); err != nil {
		return nil, err
	}
	if err := in.check(false); err != nil {
		return nil, err
	}

	var updated *model.Semester
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireOwned(ctx, ownership.Semester, semesterID, userID); err != nil {
			return err
		}
		semester, err := repos.Semesters.FindByID(ctx, semesterID)
		if err != nil {
			return fmt.Errorf("find semester: %w", err)
		}

		if in.Season != nil {
			semester.Season = model.Season(*in.Season)
		}
		if in.Year != nil {
			semester.Year = validate.IntValue(in.Year)
		}
		semester.UpdatedAt = s.now()

		if err := repos.Semesters.Update(ctx, semester); err != nil {
			return conflictOn(err, "Semester already exists")
		}
		updated = semester
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSemester は学期と配下の授業・課題・課題作業を削除する。
func (s *Service) DeleteSemester(ctx context.Context, userID, semesterID string) error {
	if err := checkID("id", semesterID); err != nil {
		return err
	}

	var report cascade.Report
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := resolver(repos).RequireOwned(ctx, ownership.Semester, semesterID, userID); err != nil {
			return err
		}
		var err error
		report, err = cascade.DeleteSemester(ctx, repos, semesterID)
		return err
	})
	if err != nil {
		return err
	}

	logCascade(ctx, "semester deleted", userID, report)
	return nil
}
