// Package security はアプリケーションのセキュリティ機能を提供する。
//
// Sanitizer はユーザー入力文字列を永続化前に無害化する。
// bluemondayのStrictPolicyで全てのHTMLタグを除去し、
// 制御文字の除去と文字数上限の適用を行う。
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// DefaultMaxLength は上限未指定時の最大文字数。
const DefaultMaxLength = 200

// maxPasses はタグ除去を繰り返す最大回数。
// エスケープされたタグ（&lt;script&gt;）がアンエスケープ後に再出現する場合に備える。
const maxPasses = 3

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// StringSanitizer は文字列サニタイズ機能のインターフェース。
type StringSanitizer interface {
	// Clean はs をトリム・タグ除去・制御文字除去し、maxLen文字（rune単位）に切り詰める。
	// maxLen が0以下の場合は DefaultMaxLength を使用する。
	Clean(s string, maxLen int) string
}

// Sanitizer はStringSanitizerの実装。
// bluemondayのPolicyはスレッドセーフなため、単一インスタンスを共有してよい。
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer は全タグを除去するポリシーでSanitizerを生成する。
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean はs を無害化した文字列を返す。
func (s *Sanitizer) Clean(in string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	out := strings.TrimSpace(in)
	stable := false
	for i := 0; i < maxPasses && !stable; i++ {
		// StrictPolicyは&などをエスケープして返すため、保存用に平文へ戻す
		next := html.UnescapeString(s.policy.Sanitize(out))
		stable = next == out
		out = next
	}
	if !stable {
		// 多重エスケープで収束しない入力はエスケープ済みの形で保存する
		out = s.policy.Sanitize(out)
	}

	out = controlChars.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	if utf8.RuneCountInString(out) > maxLen {
		out = string([]rune(out)[:maxLen])
	}
	return out
}

// CleanAll はスライスの各要素にCleanを適用する。
// 結果が空文字列になった要素は除外される。
func (s *Sanitizer) CleanAll(in []string, maxLen int) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if c := s.Clean(v, maxLen); c != "" {
			out = append(out, c)
		}
	}
	return out
}
