// Package validate は宣言的なルール一覧を解釈してリクエスト値を検証する。
//
// 各エンドポイントはフィールドごとのRuleを列挙し、Checkが違反メッセージの一覧を返す。
// 違反が1件でもあればハンドラーはストレージに到達する前に400を返す。
package validate

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/studytrack/internal/model"
)

// Kind はフィールドの値の種類を表す。
type Kind int

const (
	// String は string または *string を受け付ける。
	String Kind = iota
	// Int は JSONの数値（*float64 / float64）または int / *int を受け付ける。
	Int
	// Bool は bool または *bool を受け付ける。
	Bool
	// ID はUUID文字列。
	ID
	// Date はParseDateで解釈できる日付文字列。
	Date
	// StringList は []string。
	StringList
	// IDList はUUID文字列の []string。
	IDList
)

// Range は数値の閉区間。
type Range struct {
	Min, Max int
}

// Rule は1フィールド分の検証ルール。
type Rule struct {
	Field    string
	Kind     Kind
	Value    any
	Required bool

	// 文字列（リストの場合は各要素）の長さ制約。0は制約なし。rune単位。
	MinLen int
	MaxLen int
	// NotBlank は空白のみの文字列を拒否する。
	NotBlank bool
	Enum     []string
	// NoOperatorPrefix は "$" で始まる文字列を拒否する。
	NoOperatorPrefix bool

	Range *Range

	// MaxItems はリストの要素数上限。0は制約なし。
	MaxItems int

	// Custom は値が存在する場合にのみ呼ばれ、空でない戻り値を違反として追加する。
	Custom func() string
}

// Check は全ルールを評価して違反メッセージを返す。違反がなければnil。
func Check(rules ...Rule) []string {
	var violations []string
	for _, r := range rules {
		violations = append(violations, r.check()...)
	}
	return violations
}

// Err は違反一覧をバリデーションエラーに変換する。違反がなければnilを返す。
func Err(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return model.NewValidationError(violations)
}

// IsID はsが正規形のUUID文字列かどうかを返す。
// urn:uuid: 形式や波括弧付きの表記は受け付けない。
func IsID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IntValue はJSON数値のポインタをintに変換する。nilの場合は0。
func IntValue(p *float64) int {
	if p == nil {
		return 0
	}
	return int(*p)
}

func (r Rule) check() []string {
	switch r.Kind {
	case String, ID, Date:
		s, ok := stringOf(r.Value)
		if !ok || s == "" {
			if r.Required {
				return []string{fmt.Sprintf("%s is required", r.Field)}
			}
			if !ok {
				return nil
			}
		}
		return r.checkString(s)
	case Int:
		n, ok := numberOf(r.Value)
		if !ok {
			return r.missing()
		}
		return r.checkNumber(n)
	case Bool:
		if _, ok := boolOf(r.Value); !ok {
			return r.missing()
		}
		return r.custom()
	case StringList, IDList:
		list, ok := r.Value.([]string)
		if !ok || list == nil {
			return r.missing()
		}
		return r.checkList(list)
	default:
		return []string{fmt.Sprintf("%s has unsupported rule kind", r.Field)}
	}
}

func (r Rule) missing() []string {
	if r.Required {
		return []string{fmt.Sprintf("%s is required", r.Field)}
	}
	return nil
}

func (r Rule) custom() []string {
	if r.Custom == nil {
		return nil
	}
	if msg := r.Custom(); msg != "" {
		return []string{msg}
	}
	return nil
}

func (r Rule) checkString(s string) []string {
	var v []string
	switch r.Kind {
	case ID:
		if !IsID(s) {
			v = append(v, fmt.Sprintf("%s must be a valid id", r.Field))
		}
	case Date:
		if _, _, err := ParseDate(s); err != nil {
			v = append(v, fmt.Sprintf("%s must be a valid date", r.Field))
		}
	default:
		v = append(v, r.checkText(r.Field, s)...)
		if len(r.Enum) > 0 && !slices.Contains(r.Enum, s) {
			v = append(v, fmt.Sprintf("%s must be one of: %s", r.Field, strings.Join(r.Enum, ", ")))
		}
	}
	if len(v) > 0 {
		return v
	}
	return r.custom()
}

// checkText は長さ・空白・演算子接頭辞の制約を検証する。
func (r Rule) checkText(field, s string) []string {
	var v []string
	n := utf8.RuneCountInString(s)
	if r.NotBlank && strings.TrimSpace(s) == "" {
		v = append(v, fmt.Sprintf("%s cannot be empty", field))
	} else if r.MinLen > 0 && n < r.MinLen {
		v = append(v, fmt.Sprintf("%s must be at least %d characters", field, r.MinLen))
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		v = append(v, fmt.Sprintf("%s must be at most %d characters", field, r.MaxLen))
	}
	if r.NoOperatorPrefix && strings.HasPrefix(strings.TrimSpace(s), "$") {
		v = append(v, fmt.Sprintf("%s cannot start with $", field))
	}
	return v
}

func (r Rule) checkNumber(n float64) []string {
	var v []string
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		v = append(v, fmt.Sprintf("%s must be an integer", r.Field))
	}
	if r.Range != nil {
		if n < float64(r.Range.Min) {
			v = append(v, fmt.Sprintf("%s must be at least %d", r.Field, r.Range.Min))
		}
		if n > float64(r.Range.Max) {
			v = append(v, fmt.Sprintf("%s must be at most %d", r.Field, r.Range.Max))
		}
	}
	if len(v) > 0 {
		return v
	}
	return r.custom()
}

func (r Rule) checkList(list []string) []string {
	var v []string
	if r.Required && len(list) == 0 {
		return []string{fmt.Sprintf("%s must have at least 1 items", r.Field)}
	}
	if r.MaxItems > 0 && len(list) > r.MaxItems {
		v = append(v, fmt.Sprintf("%s must have at most %d items", r.Field, r.MaxItems))
	}
	for i, item := range list {
		field := fmt.Sprintf("%s[%d]", r.Field, i)
		if r.Kind == IDList {
			if !IsID(item) {
				v = append(v, fmt.Sprintf("%s must be a valid id", field))
			}
			continue
		}
		v = append(v, r.checkText(field, item)...)
	}
	if len(v) > 0 {
		return v
	}
	return r.custom()
}

func stringOf(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case int:
		return float64(n), true
	case *int:
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	}
	return 0, false
}

func boolOf(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case *bool:
		if b == nil {
			return false, false
		}
		return *b, true
	}
	return false, false
}
