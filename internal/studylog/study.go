package studylog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/ownership"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/validate"
)

const maxWhatLength = 200

// understanding は理解度の許容範囲。
var understanding = &validate.Range{Min: 0, Max: 10}

// StudyInput は学習記録の作成・更新リクエスト。
type StudyInput struct {
	SessionID     *string  `json:"session"`
	What          *string  `json:"what"`
	Understanding *float64 `json:"understanding"`
	Time          *float64 `json:"time"`
}

func (in StudyInput) check(required bool) error {
	rules := []validate.Rule{
		{Field: "what", Kind: validate.String, Value: in.What, Required: required,
			NotBlank: true, MinLen: 1, MaxLen: maxWhatLength},
		{Field: "understanding", Kind: validate.Int, Value: in.Understanding, Required: required, Range: understanding},
		{Field: "time", Kind: validate.Int, Value: in.Time, Required: required, Range: minutes},
	}
	if required {
		rules = append([]validate.Rule{{Field: "session", Kind: validate.ID, Value: in.SessionID, Required: true}}, rules...)
	}
	return validate.Err(validate.Check(rules...))
}

// ListStudies はセッションの学習記録を返す。セッションが存在しないか他ユーザー所有の場合はNOT_FOUND。
func (s *Service) ListStudies(ctx context.Context, userID, sessionID string) ([]*model.Study, error) {
	if err := checkID("sessionId", sessionID); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, sessionID, userID); err != nil {
		return nil, err
	}
	studies, err := repos.Studies.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	return studies, nil
}

// CreateStudy はセッションに学習記録を追加する。
func (s *Service) CreateStudy(ctx context.Context, userID string, in StudyInput) (*model.Study, error) {
	if err := in.check(true); err != nil {
		return nil, err
	}
	what, err := s.cleanRequired("what", *in.What, maxWhatLength)
	if err != nil {
		return nil, err
	}

	now := s.now()
	study := &model.Study{
		ID:            uuid.NewString(),
		SessionID:     *in.SessionID,
		What:          what,
		Understanding: validate.IntValue(in.Understanding),
		Time:          validate.IntValue(in.Time),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, study.SessionID, userID); err != nil {
			return err
		}
		if err := repos.Studies.Create(ctx, study); err != nil {
			return fmt.Errorf("create study: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return study, nil
}

// UpdateStudy は指定されたフィールドのみ更新する。
func (s *Service) UpdateStudy(ctx context.Context, userID, studyID string, in StudyInput) (*model.Study, error) {
	if err := checkID("id", studyID); err != nil {
		return nil, err
	}
	if err := in.check(false); err != nil {
		return nil, err
	}

	var updated *model.Study
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireAccess(ctx, ownership.Study, studyID, userID); err != nil {
			return err
		}
		study, err := repos.Studies.FindByID(ctx, studyID)
		if err != nil {
			return fmt.Errorf("find study: %w", err)
		}

		if in.What != nil {
			if study.What, err = s.cleanRequired("what", *in.What, maxWhatLength); err != nil {
				return err
			}
		}
		if in.Understanding != nil {
			study.Understanding = validate.IntValue(in.Understanding)
		}
		if in.Time != nil {
			study.Time = validate.IntValue(in.Time)
		}
		study.UpdatedAt = s.now()

		if err := repos.Studies.Update(ctx, study); err != nil {
			return fmt.Errorf("update study: %w", err)
		}
		updated = study
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteStudy は学習記録を削除する。
func (s *Service) DeleteStudy(ctx context.Context, userID, studyID string) error {
	if err := checkID("id", studyID); err != nil {
		return err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireAccess(ctx, ownership.Study, studyID, userID); err != nil {
		return err
	}
	if _, err := repos.Studies.DeleteByID(ctx, studyID); err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	return nil
}
