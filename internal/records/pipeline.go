package records

import (
	"cmp"
	"slices"

	"github.com/hitoshi/studytrack/internal/model"
)

// Pipeline は結合済みセッション行に対する集計ステージを順に実行する。
//
//	match → summarize → sort(datetime昇順) → overall
//
// 各ステージは入力を変更しない。
type Pipeline struct {
	match Predicate
}

// NewPipeline はmatchに一致する行を集計するPipelineを生成する。nilは全件一致。
func NewPipeline(match Predicate) *Pipeline {
	if match == nil {
		match = MatchAll
	}
	return &Pipeline{match: match}
}

// Run は行を集計する。一致する行がない場合もOverallは0で埋めて返す。
func (p *Pipeline) Run(rows []model.SessionRecord) *Result {
	sessions := make([]SessionSummary, 0, len(rows))
	for i := range rows {
		if !p.match(&rows[i]) {
			continue
		}
		sessions = append(sessions, Summarize(&rows[i]))
	}

	slices.SortStableFunc(sessions, func(a, b SessionSummary) int {
		if c := a.Datetime.Compare(b.Datetime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return &Result{
		Sessions: sessions,
		Overall:  Overall(sessions),
	}
}

// Summarize は1行分の合計と比率を算出する。
func Summarize(rec *model.SessionRecord) SessionSummary {
	s := SessionSummary{
		ID:              rec.ID,
		Title:           rec.Title,
		Datetime:        rec.Datetime,
		Distractions:    make([]DistractionSummary, 0, len(rec.Distractions)),
		AssignmentWorks: make([]WorkSummary, 0, len(rec.Works)),
		Studies:         make([]StudySummary, 0, len(rec.Studies)),
	}

	for _, d := range rec.Distractions {
		s.Distractions = append(s.Distractions, DistractionSummary{Type: d.Type, TimeTaken: d.TimeTaken})
		s.TotalDistractionTime += d.TimeTaken
	}
	for _, w := range rec.Works {
		s.AssignmentWorks = append(s.AssignmentWorks, WorkSummary{
			Time: w.Time,
			Assignment: AssignmentSummary{
				ID:    w.Assignment.ID,
				Title: w.Assignment.Title,
				Class: ClassSummary{
					ID:        w.Assignment.Class.ID,
					ClassCode: w.Assignment.Class.ClassCode,
					Professor: w.Assignment.Class.Professor,
				},
			},
		})
		s.TotalAssignmentTime += w.Time
	}
	for _, st := range rec.Studies {
		s.Studies = append(s.Studies, StudySummary{What: st.What, Understanding: st.Understanding, Time: st.Time})
		s.TotalStudyTime += st.Time
	}

	s.TotalSessionTime = s.TotalDistractionTime + s.TotalAssignmentTime + s.TotalStudyTime
	s.DistractionFraction = fraction(s.TotalDistractionTime, s.TotalSessionTime)
	s.AssignmentFraction = fraction(s.TotalAssignmentTime, s.TotalSessionTime)
	s.StudyFraction = fraction(s.TotalStudyTime, s.TotalSessionTime)
	return s
}

// Overall はセッション集計の合計を算出する。
func Overall(sessions []SessionSummary) OverallSummary {
	var o OverallSummary
	for _, s := range sessions {
		o.AllDistractionTime += s.TotalDistractionTime
		o.AllAssignmentTime += s.TotalAssignmentTime
		o.AllStudyTime += s.TotalStudyTime
	}
	o.AllSessionTime = o.AllDistractionTime + o.AllAssignmentTime + o.AllStudyTime
	o.DistractionFraction = fraction(o.AllDistractionTime, o.AllSessionTime)
	o.AssignmentFraction = fraction(o.AllAssignmentTime, o.AllSessionTime)
	o.StudyFraction = fraction(o.AllStudyTime, o.AllSessionTime)
	return o
}
