// Package studylog は学習セッションと、その中の学習記録・中断・課題作業の管理を提供する。
package studylog

import (
	"errors"
	"time"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/security"
	"github.com/hitoshi/studytrack/internal/validate"
)

// minutes は分数フィールドの許容範囲。
var minutes = &validate.Range{Min: 0, Max: model.MaxMinutes}

// Service は学習ログのサービス層。
type Service struct {
	store     repository.Store
	sanitizer security.StringSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(store repository.Store, sanitizer security.StringSanitizer) *Service {
	return &Service{store: store, sanitizer: sanitizer, now: time.Now}
}

func checkID(field, id string) error {
	return validate.Err(validate.Check(validate.Rule{Field: field, Kind: validate.ID, Value: id, Required: true}))
}

// cleanRequired はサニタイズ後に空になった必須文字列をバリデーションエラーにする。
func (s *Service) cleanRequired(field, v string, maxLen int) (string, error) {
	out := s.sanitizer.Clean(v, maxLen)
	if out == "" {
		return "", validate.Err([]string{field + " cannot be empty"})
	}
	return out, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
