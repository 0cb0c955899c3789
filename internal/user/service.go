// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/studytrack/internal/cascade"
	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/security"
	"github.com/hitoshi/studytrack/internal/validate"
)

const maxSchoolLength = 100

// ProfileInput はプロフィール更新リクエスト。未指定のフィールドは変更しない。
type ProfileInput struct {
	StartYear *float64 `json:"startYear"`
	School    *string  `json:"school"`
}

// Service はユーザー管理のサービス層。
type Service struct {
	store     repository.Store
	sanitizer security.StringSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store repository.Store, sanitizer security.StringSanitizer) *Service {
	return &Service{store: store, sanitizer: sanitizer, now: time.Now}
}

// Profile はユーザーのプロフィールを返す。
func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.Repos().Users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile は入学年度と学校名を更新する。少なくとも一方の指定が必要。
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	year := s.now().Year()
	violations := validate.Check(
		validate.Rule{Field: "startYear", Kind: validate.Int, Value: in.StartYear,
			Range: &validate.Range{Min: max(1900, year-100), Max: year + 5}},
		validate.Rule{Field: "school", Kind: validate.String, Value: in.School,
			NotBlank: true, MinLen: 1, MaxLen: maxSchoolLength,
			Custom: func() string {
				lower := strings.ToLower(*in.School)
				if strings.Contains(lower, "<script") || strings.Contains(lower, "javascript:") {
					return "school contains invalid characters"
				}
				return ""
			}},
	)
	if err := validate.Err(violations); err != nil {
		return nil, err
	}
	if in.StartYear == nil && in.School == nil {
		return nil, model.NewInvalidRequestError("No valid fields provided to update")
	}

	var updated *model.User
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return model.NewUserNotFoundError()
		}

		if in.StartYear != nil {
			y := validate.IntValue(in.StartYear)
			user.StartYear = &y
		}
		if in.School != nil {
			// 連続する空白は1つにまとめる
			user.School = strings.Join(strings.Fields(s.sanitizer.Clean(*in.School, maxSchoolLength)), " ")
		}
		user.UpdatedAt = s.now()

		if err := repos.Users.UpdateProfile(ctx, user); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 学期・授業・課題・セッションと全ての子レコードを葉から順に削除し、最後にユーザーを削除する。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	var report cascade.Report
	err := s.store.InTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return model.NewUserNotFoundError()
		}

		report, err = cascade.DeleteUser(ctx, repos, userID)
		return err
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "user withdrawn",
		append([]any{"user_id", userID}, report.LogAttrs()...)...,
	)
	return nil
}
