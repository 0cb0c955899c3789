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

// WorkInput は課題作業の作成・更新リクエスト。更新ではTimeのみ使用する。
type WorkInput struct {
	Time         *float64 `json:"time"`
	AssignmentID *string  `json:"assignmentId"`
	SessionID    *string  `json:"sessionId"`
}

// ListWorks はセッションの課題作業を課題付きで返す。
func (s *Service) ListWorks(ctx context.Context, userID, sessionID string) ([]*model.AssignmentWorkWithAssignment, error) {
	if err := checkID("sessionId", sessionID); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, sessionID, userID); err != nil {
		return nil, err
	}
	works, err := repos.Works.ListWithAssignmentBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	return works, nil
}

// CreateWork はセッションに課題作業を追加する。
//
// 検証順序: セッションの所有（NOT_FOUND）→ 課題の存在（NOT_FOUND）→
// 課題の所有（FORBIDDEN）→ (課題, セッション) の一意性（CONFLICT）。
// 検証と書き込みは単一トランザクションで行う。
func (s *Service) CreateWork(ctx context.Context, userID string, in WorkInput) (*model.AssignmentWorkWithAssignment, error) {
	err := validate.Err(validate.Check(
		validate.Rule{Field: "time", Kind: validate.Int, Value: in.Time, Required: true, Range: minutes},
		validate.Rule{Field: "assignmentId", Kind: validate.ID, Value: in.AssignmentID, Required: true},
		validate.Rule{Field: "sessionId", Kind: validate.ID, Value: in.SessionID, Required: true},
	))
	if err != nil {
		return nil, err
	}

	now := s.now()
	work := &model.AssignmentWork{
		ID:           uuid.NewString(),
		AssignmentID: *in.AssignmentID,
		SessionID:    *in.SessionID,
		Time:         validate.IntValue(in.Time),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var created *model.AssignmentWorkWithAssignment
	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		resolver := ownership.New(repos)
		if err := resolver.RequireOwned(ctx, ownership.Session, work.SessionID, userID); err != nil {
			return err
		}
		if err := resolver.RequireAccess(ctx, ownership.Assignment, work.AssignmentID, userID); err != nil {
			return err
		}
		if err := repos.Works.Create(ctx, work); err != nil {
			if isDuplicate(err) {
				return model.NewConflictError("Work entry for this assignment already exists in this session. Use update instead.")
			}
			return fmt.Errorf("create work: %w", err)
		}

		var err error
		created, err = repos.Works.FindWithAssignmentByID(ctx, work.ID)
		if err != nil {
			return fmt.Errorf("find work: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateWork は課題作業の時間を更新する。
func (s *Service) UpdateWork(ctx context.Context, userID, workID string, in WorkInput) (*model.AssignmentWorkWithAssignment, error) {
	if err := checkID("id", workID); err != nil {
		return nil, err
	}
	err := validate.Err(validate.Check(
		validate.Rule{Field: "time", Kind: validate.Int, Value: in.Time, Required: true, Range: minutes},
	))
	if err != nil {
		return nil, err
	}

	var updated *model.AssignmentWorkWithAssignment
	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireAccess(ctx, ownership.Work, workID, userID); err != nil {
			return err
		}
		work, err := repos.Works.FindByID(ctx, workID)
		if err != nil {
			return fmt.Errorf("find work: %w", err)
		}
		work.Time = validate.IntValue(in.Time)
		work.UpdatedAt = s.now()
		if err := repos.Works.Update(ctx, work); err != nil {
			return fmt.Errorf("update work: %w", err)
		}

		updated, err = repos.Works.FindWithAssignmentByID(ctx, workID)
		if err != nil {
			return fmt.Errorf("find work: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteWork は課題作業を削除する。
func (s *Service) DeleteWork(ctx context.Context, userID, workID string) error {
	if err := checkID("id", workID); err != nil {
		return err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireAccess(ctx, ownership.Work, workID, userID); err != nil {
		return err
	}
	if _, err := repos.Works.DeleteByID(ctx, workID); err != nil {
		return fmt.Errorf("delete work: %w", err)
	}
	return nil
}
