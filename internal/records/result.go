package records

import "time"

// Result はフィルタ付き集計の結果。
type Result struct {
	Sessions []SessionSummary `json:"sessions"`
	Overall  OverallSummary   `json:"overall"`
}

// SessionSummary は1セッション分の集計結果。
// 中断一覧は種別フィルタの一致有無に関わらずセッションの全件を含む。
type SessionSummary struct {
	ID              string               `json:"_id"`
	Title           string               `json:"title"`
	Datetime        time.Time            `json:"datetime"`
	Distractions    []DistractionSummary `json:"distractions"`
	AssignmentWorks []WorkSummary        `json:"assignmentworks"`
	Studies         []StudySummary       `json:"studies"`

	TotalDistractionTime int `json:"totalDistractionTime"`
	TotalAssignmentTime  int `json:"totalAssignmentTime"`
	TotalStudyTime       int `json:"totalStudyTime"`
	TotalSessionTime     int `json:"totalSessionTime"`

	DistractionFraction float64 `json:"distractionFraction"`
	AssignmentFraction  float64 `json:"assignmentFraction"`
	StudyFraction       float64 `json:"studyFraction"`
}

// DistractionSummary は集計結果に含める中断記録。
type DistractionSummary struct {
	Type      string `json:"type"`
	TimeTaken int    `json:"timeTaken"`
}

// WorkSummary は集計結果に含める課題作業記録。
type WorkSummary struct {
	Time       int               `json:"time"`
	Assignment AssignmentSummary `json:"assignment"`
}

// AssignmentSummary は課題作業に展開される課題。
type AssignmentSummary struct {
	ID    string       `json:"_id"`
	Title string       `json:"title"`
	Class ClassSummary `json:"class"`
}

// ClassSummary は課題に展開される授業。
type ClassSummary struct {
	ID        string `json:"_id"`
	ClassCode string `json:"classId"`
	Professor string `json:"professor"`
}

// StudySummary は集計結果に含める学習記録。
type StudySummary struct {
	What          string `json:"what"`
	Understanding int    `json:"understanding"`
	Time          int    `json:"time"`
}

// OverallSummary は一致した全セッションの合計。
// 比率はセッションごとの比率の平均ではなく合計値から算出する。
type OverallSummary struct {
	AllDistractionTime int `json:"AllDistractionTime"`
	AllAssignmentTime  int `json:"AllAssignmentTime"`
	AllStudyTime       int `json:"AllStudyTime"`
	AllSessionTime     int `json:"AllSessionTime"`

	DistractionFraction float64 `json:"distractionFraction"`
	AssignmentFraction  float64 `json:"assignmentFraction"`
	StudyFraction       float64 `json:"studyFraction"`
}

// fraction は合計が0の場合に0を返す。
func fraction(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
