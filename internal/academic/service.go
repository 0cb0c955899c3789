// Package academic は学期・授業・課題の管理を提供する。
//
// 全ての操作はownership.Resolverで所有チェーンを検証してからストレージに到達する。
// 親エンティティの削除はcascadeパッケージで子から順に削除する。
package academic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/studytrack/internal/cascade"
	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/ownership"
	"github.com/hitoshi/studytrack/internal/repository"
	"github.com/hitoshi/studytrack/internal/security"
	"github.com/hitoshi/studytrack/internal/validate"
)

// Service は学期・授業・課題のサービス層。
type Service struct {
	store     repository.Store
	sanitizer security.StringSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(store repository.Store, sanitizer security.StringSanitizer) *Service {
	return &Service{store: store, sanitizer: sanitizer, now: time.Now}
}

// checkID はパスパラメータのIDを検証する。
func checkID(field, id string) error {
	return validate.Err(validate.Check(validate.Rule{Field: field, Kind: validate.ID, Value: id, Required: true}))
}

// conflictOn はErrDuplicateをCONFLICTに変換する。それ以外のエラーはそのまま返す。
func conflictOn(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return model.NewConflictError(message)
	}
	return err
}

func logCascade(ctx context.Context, msg, userID string, report cascade.Report) {
	slog.InfoContext(ctx, msg, append([]any{"user_id", userID}, report.LogAttrs()...)...)
}

// resolver はリポジトリ群に束縛したResolverを返す。
func resolver(repos repository.Repositories) *ownership.Resolver {
	return ownership.New(repos)
}
