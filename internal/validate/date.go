package validate

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate は日付文字列を解釈できない場合のエラー。
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts は受け付ける日付書式。タイムゾーンを持たない書式はUTCとして解釈する。
var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false}, // HTMLのdatetime-local
	{time.DateOnly, true},
}

// ParseDate はs を時刻として解釈する。
// dateOnly は時刻部分を持たない書式（YYYY-MM-DD）で解釈されたかどうかを示す。
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t.UTC(), l.dateOnly, nil
		}
	}
	return time.Time{}, false, ErrInvalidDate
}

// EndOfDay はtの属する日（UTC）の最後の瞬間を返す。
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
