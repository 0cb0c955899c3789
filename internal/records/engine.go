package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/studytrack/internal/repository"
)

// Observer は集計クエリの実行結果を受け取る。メトリクス収集に利用する。
type Observer interface {
	RecordRecordsQuery(duration time.Duration, scanned, matched int, err error)
}

// Engine はユーザーのセッションを読み出してフィルタ付き集計を行う。
type Engine struct {
	records  repository.RecordRepository
	observer Observer
	logger   *slog.Logger
}

// NewEngine は新しいEngineを生成する。observerはnilでもよい。
func NewEngine(records repository.RecordRepository, observer Observer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{records: records, observer: observer, logger: logger}
}

// ComputeFilteredRecords はuserIDのセッションのうちreqの条件に一致するものを集計する。
// 読み出しはuserIDのセッションに限定され、他ユーザーのデータは結果に含まれない。
func (e *Engine) ComputeFilteredRecords(ctx context.Context, userID string, req Request) (*Result, error) {
	filter, err := Compile(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := e.records.ListSessionRecords(ctx, userID)
	if err != nil {
		e.observe(start, 0, 0, err)
		return nil, fmt.Errorf("list session records: %w", err)
	}

	result := NewPipeline(filter.Predicate()).Run(rows)
	e.observe(start, len(rows), len(result.Sessions), nil)

	e.logger.DebugContext(ctx, "filtered records computed",
		append([]any{
			"user_id", userID,
			"scanned", len(rows),
			"matched", len(result.Sessions),
		}, filter.Active()...)...,
	)
	return result, nil
}

func (e *Engine) observe(start time.Time, scanned, matched int, err error) {
	if e.observer == nil {
		return
	}
	e.observer.RecordRecordsQuery(time.Since(start), scanned, matched, err)
}
