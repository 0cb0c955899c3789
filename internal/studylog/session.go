package studylog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/studytrack/internal/cascade"
	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/ownership"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/validate"
)

const maxTitleLength = 200

// SessionInput は学習セッションの作成・更新リクエスト。
type SessionInput struct {
	Title    *string `json:"title"`
	Datetime *string `json:"datetime"`
}

func (in SessionInput) check(required bool) error {
	return validate.Err(validate.Check(
		validate.Rule{Field: "title", Kind: validate.String, Value: in.Title, Required: required,
			NotBlank: true, MinLen: 1, MaxLen: maxTitleLength},
		validate.Rule{Field: "datetime", Kind: validate.Date, Value: in.Datetime},
	))
}

// ListSessions はユーザーのセッションを日時の降順で返す。
func (s *Service) ListSessions(ctx context.Context, userID string) ([]*model.StudySession, error) {
	sessions, err := s.store.Repos().Sessions.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CreateSession はセッションを作成する。日時の指定がなければ現在時刻を使う。
func (s *Service) CreateSession(ctx context.Context, userID string, in SessionInput) (*model.StudySession, error) {
	if err := in.check(true); err != nil {
		return nil, err
	}
	title, err := s.cleanRequired("title", *in.Title, maxTitleLength)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &model.StudySession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Datetime:  now.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Datetime != nil {
		session.Datetime, _, _ = validate.ParseDate(*in.Datetime)
	}

	if err := s.store.Repos().Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// UpdateSession は指定されたフィールドのみ更新する。
func (s *Service) UpdateSession(ctx context.Context, userID, sessionID string, in SessionInput) (*model.StudySession, error) {
	if err := checkID("id", sessionID); err != nil {
		return nil, err
	}
	if err := in.check(false); err != nil {
		return nil, err
	}

	var updated *model.StudySession
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, sessionID, userID); err != nil {
			return err
		}
		session, err := repos.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("find session: %w", err)
		}

		if in.Title != nil {
			if session.Title, err = s.cleanRequired("title", *in.Title, maxTitleLength); err != nil {
				return err
			}
		}
		if in.Datetime != nil {
			session.Datetime, _, _ = validate.ParseDate(*in.Datetime)
		}
		session.UpdatedAt = s.now()

		if err := repos.Sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSession はセッションと学習記録・中断・課題作業を削除する。
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := checkID("id", sessionID); err != nil {
		return err
	}

	var report cascade.Report
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ownership.New(repos).RequireOwned(ctx, ownership.Session, sessionID, userID); err != nil {
			return err
		}
		var err error
		report, err = cascade.DeleteSession(ctx, repos, sessionID)
		return err
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "session deleted", append([]any{"user_id", userID}, report.LogAttrs()...)...)
	return nil
}
