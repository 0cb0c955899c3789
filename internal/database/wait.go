package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialConnectBackoff は接続再試行の初回待機時間。
	initialConnectBackoff = 500 * time.Millisecond
	// maxConnectBackoff は接続再試行の最大待機時間。
	maxConnectBackoff = 8 * time.Second
)

// Pinger は接続確認を抽象化するインターフェース。*sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectBackoff は失敗回数に基づく指数バックオフ遅延を返す。
// 初回500ミリ秒、2倍ずつ増加、最大8秒。
func ConnectBackoff(failures int) time.Duration {
	delay := initialConnectBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxConnectBackoff {
			return maxConnectBackoff
		}
	}
	return delay
}

// WaitForConnection はデータベースに接続できるまで最大attempts回Pingを試行する。
// 試行の間は指数バックオフで待機する。ctxがキャンセルされた場合は即座に返る。
func WaitForConnection(ctx context.Context, db Pinger, attempts int) error {
	return waitForConnection(ctx, db, attempts, ConnectBackoff)
}

func waitForConnection(ctx context.Context, db Pinger, attempts int, backoff func(int) time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = db.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := backoff(i)
		slog.Warn("database not reachable, retrying",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", delay),
			slog.String("error", lastErr.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for database: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("database not reachable after %d attempts: %w", attempts, lastErr)
}
