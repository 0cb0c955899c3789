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

const maxDistractionTypeLength = 50

// DistractionInput は中断記録の作成・更新リクエスト。
type DistractionInput struct {
	SessionID *string  `json:"session"`
	Type      *string  `json:"type"`
	TimeTaken *float64 `json:"timeTaken"`
}

func (in DistractionInput) check(required bool) error {
	rules := []validate.Rule{
		{Field: "type", Kind: validate.String, Value: in.Type, Required: required,
			NotBlank: true, MinLen: 1, MaxLen: maxDistractionTypeLength, NoOperatorPrefix: true},
		{Field: "timeTaken", Kind: validate.Int, Value: in.TimeTaken, Required: required, Range: minutes},
	}
	if required {
		rules = append([]validate.Rule{{Field: "session", Kind: validate.ID, Value: in.SessionID, Required: true}}, rules...)
	}
	return validate.Err(validate.Check(rules...))
}

// ListDistractions はセッションの中断記録を返す。
func (s *Service) ListDistractions(ctx context.Context, userID, sessionID string) ([]*model.Distraction, error) {
	if err := checkID("sessionId", sessionID); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, sessionID, userID); err != nil {
		return nil, err
	}
	distractions, err := repos.Distractions.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list distractions: %w", err)
	}
	return distractions, nil
}

// ListMyDistractionTypes はユーザーが記録した中断種別を重複なく返す。
func (s *Service) ListMyDistractionTypes(ctx context.Context, userID string) ([]string, error) {
	repos := s.store.Repos()
	sessionIDs, err := ownership.New(repos).ResolveOwnedSessionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	types, err := repos.Distractions.DistinctTypesBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("list distraction types: %w", err)
	}
	return types, nil
}

// CreateDistraction はセッションに中断記録を追加する。
func (s *Service) CreateDistraction(ctx context.Context, userID string, in DistractionInput) (*model.Distraction, error) {
	if err := in.check(true); err != nil {
		return nil, err
	}
	typ, err := s.cleanRequired("type", *in.Type, maxDistractionTypeLength)
	if err != nil {
		return nil, err
	}

	now := s.now()
	distraction := &model.Distraction{
		ID:        uuid.NewString(),
		SessionID: *in.SessionID,
		Type:      typ,
		TimeTaken: validate.IntValue(in.TimeTaken),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, distraction.SessionID, userID); err != nil {
			return err
		}
		if err := repos.Distractions.Create(ctx, distraction); err != nil {
			return fmt.Errorf("create distraction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return distraction, nil
}

// UpdateDistraction は指定されたフィールドのみ更新する。
func (s *Service) UpdateDistraction(ctx context.Context, userID, distractionID string, in DistractionInput) (*model.Distraction, error) {
	if err := checkID("id", distractionID); err != nil {
		return nil, err
	}
	if err := in.check(false); err != nil {
		return nil, err
	}

	var updated *model.Distraction
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireAccess(ctx, ownership.Distraction, distractionID, userID); err != nil {
			return err
		}
		distraction, err := repos.Distractions.FindByID(ctx, distractionID)
		if err != nil {
			return fmt.Errorf("find distraction: %w", err)
		}

		if in.Type != nil {
			if distraction.Type, err = s.cleanRequired("type", *in.Type, maxDistractionTypeLength); err != nil {
				return err
			}
		}
		if in.TimeTaken != nil {
			distraction.TimeTaken = validate.IntValue(in.TimeTaken)
		}
		distraction.UpdatedAt = s.now()

		if err := repos.Distractions.Update(ctx, distraction); err != nil {
			return fmt.Errorf("update distraction: %w", err)
		}
		updated = distraction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDistraction は中断記録を削除する。
func (s *Service) DeleteDistraction(ctx context.Context, userID, distractionID string) error {
	if err := checkID("id", distractionID); err != nil {
		return err
	}
	repos := s.store.Repos()
	if err := ownership.New(repos).RequireAccess(ctx, ownership.Distraction, distractionID, userID); err != nil {
		return err
	}
	if _, err := repos.Distractions.DeleteByID(ctx, distractionID); err != nil {
		return fmt.Errorf("delete distraction: %w", err)
	}
	return nil
}
