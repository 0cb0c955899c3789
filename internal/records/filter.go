package records

import (
	"strings"
	"time"

	"github.com/hitoshi/studytrack/internal/model"
	"github.com/hitoshi/studytrack/internal/validate"
)

const (
	// maxSelection は選択リストの要素数上限。
	maxSelection = 500
	// maxDistractionTypeLength は中断種別の最大文字数。
	maxDistractionTypeLength = 50
)

// Predicate は結合済みセッション行が条件を満たすかを判定する。
type Predicate func(rec *model.SessionRecord) bool

// MatchAll は全ての行に一致する述語。
func MatchAll(*model.SessionRecord) bool { return true }

// All は全ての述語を満たす場合に一致する述語を返す。
func All(preds ...Predicate) Predicate {
	if len(preds) == 0 {
		return MatchAll
	}
	return func(rec *model.SessionRecord) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

// Filter は検証済みのフィルタ条件。nilのフィールドは条件なしを表す。
type Filter struct {
	ClassIDs         map[string]struct{}
	AssignmentIDs    map[string]struct{}
	DistractionTypes map[string]struct{}
	From             *time.Time
	To               *time.Time
}

// Active はログ出力用に有効なフィルタと選択数を返す。値そのものは含めない。
func (f Filter) Active() []any {
	return []any{
		"class_filter", len(f.ClassIDs),
		"assignment_filter", len(f.AssignmentIDs),
		"distraction_type_filter", len(f.DistractionTypes),
		"date_filter", f.From != nil || f.To != nil,
	}
}

// Predicate はFilterを述語の論理積に変換する。
//
// 授業条件と課題条件は独立に評価する。両方が有効な場合、ある課題作業が授業条件を、
// 別の課題作業が課題条件を満たせば一致とする。
func (f Filter) Predicate() Predicate {
	var preds []Predicate
	if f.ClassIDs != nil {
		preds = append(preds, anyWork(func(w *model.WorkRecord) bool {
			_, ok := f.ClassIDs[w.Assignment.Class.ID]
			return ok
		}))
	}
	if f.AssignmentIDs != nil {
		preds = append(preds, anyWork(func(w *model.WorkRecord) bool {
			_, ok := f.AssignmentIDs[w.Assignment.ID]
			return ok
		}))
	}
	if f.DistractionTypes != nil {
		preds = append(preds, func(rec *model.SessionRecord) bool {
			for i := range rec.Distractions {
				if _, ok := f.DistractionTypes[rec.Distractions[i].Type]; ok {
					return true
				}
			}
			return false
		})
	}
	if f.From != nil {
		from := *f.From
		preds = append(preds, func(rec *model.SessionRecord) bool { return !rec.Datetime.Before(from) })
	}
	if f.To != nil {
		to := *f.To
		preds = append(preds, func(rec *model.SessionRecord) bool { return !rec.Datetime.After(to) })
	}
	return All(preds...)
}

func anyWork(match func(w *model.WorkRecord) bool) Predicate {
	return func(rec *model.SessionRecord) bool {
		for i := range rec.Works {
			if match(&rec.Works[i]) {
				return true
			}
		}
		return false
	}
}

// Compile はリクエストを検証してFilterに変換する。
//
// 選択リストはフラグの値に関わらず常に検証する。不正なID、空・50文字超・"$"始まりの
// 中断種別、解釈できない日付、開始日が終了日より後の範囲は全てバリデーションエラーになる。
// フラグがfalse、またはフラグが有効でも選択が空の条件は絞り込みに寄与しない。
func Compile(req Request) (Filter, error) {
	// 日付入力欄が未入力の場合、クライアントは空文字列を送る
	req.StartDate = blankToNil(req.StartDate)
	req.EndDate = blankToNil(req.EndDate)

	violations := validate.Check(
		validate.Rule{Field: "filterClass", Kind: validate.Bool, Value: req.FilterClass, Required: true},
		validate.Rule{Field: "filterAssignment", Kind: validate.Bool, Value: req.FilterAssignment, Required: true},
		validate.Rule{Field: "filterDistractionType", Kind: validate.Bool, Value: req.FilterDistractionType, Required: true},
		validate.Rule{Field: "filterDates", Kind: validate.Bool, Value: req.FilterDates, Required: true},
		validate.Rule{Field: "startDate", Kind: validate.Date, Value: req.StartDate},
		validate.Rule{Field: "endDate", Kind: validate.Date, Value: req.EndDate},
		validate.Rule{Field: "selectedClasses", Kind: validate.IDList, Value: []string(req.SelectedClasses), MaxItems: maxSelection},
		validate.Rule{Field: "selectedAssignments", Kind: validate.IDList, Value: []string(req.SelectedAssignments), MaxItems: maxSelection},
		validate.Rule{
			Field:            "selectedDistractionTypes",
			Kind:             validate.StringList,
			Value:            req.SelectedDistractionTypes,
			MaxItems:         maxSelection,
			MaxLen:           maxDistractionTypeLength,
			NotBlank:         true,
			NoOperatorPrefix: true,
		},
	)
	if len(violations) > 0 {
		return Filter{}, validate.Err(violations)
	}

	from, to := parseBounds(req.StartDate, req.EndDate)
	if from != nil && to != nil && from.After(*to) {
		return Filter{}, validate.Err([]string{"startDate must be before endDate"})
	}

	var f Filter
	if *req.FilterClass && len(req.SelectedClasses) > 0 {
		f.ClassIDs = toSet(req.SelectedClasses)
	}
	if *req.FilterAssignment && len(req.SelectedAssignments) > 0 {
		f.AssignmentIDs = toSet(req.SelectedAssignments)
	}
	if *req.FilterDistractionType && len(req.SelectedDistractionTypes) > 0 {
		f.DistractionTypes = toSet(req.SelectedDistractionTypes)
	}
	if *req.FilterDates {
		f.From, f.To = from, to
	}
	return f, nil
}

// parseBounds は検証済みの日付文字列を範囲の両端に変換する。
// 日付のみの終了日はその日の終わりまでを含む。
func parseBounds(start, end *string) (from, to *time.Time) {
	if start != nil {
		if t, _, err := validate.ParseDate(*start); err == nil {
			from = &t
		}
	}
	if end != nil {
		if t, dateOnly, err := validate.ParseDate(*end); err == nil {
			if dateOnly {
				t = validate.EndOfDay(t)
			}
			to = &t
		}
	}
	return from, to
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
