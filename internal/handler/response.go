package handler

import (
	"time"

	"github.com/hitoshi/studytrack/internal/model"
)

// APIレスポンスは既存のフロントエンドと互換のため、IDを "_id"、参照を親エンティティ名のキーで返す。

type userResponse struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	StartYear *int      `json:"startYear,omitempty"`
	School    string    `json:"school,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type semesterResponse struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Season    string    `json:"season"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type classResponse struct {
	ID        string    `json:"_id"`
	ClassCode string    `json:"classId"`
	Professor string    `json:"professor"`
	Grade     string    `json:"grade,omitempty"`
	Semester  string    `json:"semester"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type assignmentResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// assignmentWithClassResponse は所属授業を埋め込んだ課題。
type assignmentWithClassResponse struct {
	ID        string        `json:"_id"`
	Title     string        `json:"title"`
	Class     classResponse `json:"class"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type sessionResponse struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	Datetime  time.Time `json:"datetime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type studyResponse struct {
	ID            string    `json:"_id"`
	Session       string    `json:"session"`
	What          string    `json:"what"`
	Understanding int       `json:"understanding"`
	Time          int       `json:"time"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type distractionResponse struct {
	ID        string    `json:"_id"`
	Session   string    `json:"session"`
	Type      string    `json:"type"`
	TimeTaken int       `json:"timeTaken"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// workResponse は対象課題を埋め込んだ課題作業。
type workResponse struct {
	ID         string             `json:"_id"`
	Session    string             `json:"session"`
	Time       int                `json:"time"`
	Assignment assignmentResponse `json:"assignment"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// mapAll はスライスの各要素を変換する。入力がnilでも空スライスを返す。
func mapAll[T any, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		StartYear: u.StartYear,
		School:    u.School,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toSemesterResponse(s *model.Semester) semesterResponse {
	return semesterResponse{
		ID:        s.ID,
		User:      s.UserID,
		Season:    string(s.Season),
		Year:      s.Year,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toClassResponse(c *model.Class) classResponse {
	return classResponse{
		ID:        c.ID,
		ClassCode: c.ClassCode,
		Professor: c.Professor,
		Grade:     c.Grade,
		Semester:  c.SemesterID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toAssignmentResponse(a *model.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:        a.ID,
		Title:     a.Title,
		Class:     a.ClassID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAssignmentWithClassResponse(a *model.AssignmentWithClass) assignmentWithClassResponse {
	return assignmentWithClassResponse{
		ID:        a.ID,
		Title:     a.Title,
		Class:     toClassResponse(&a.Class),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toSessionResponse(s *model.StudySession) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		User:      s.UserID,
		Title:     s.Title,
		Datetime:  s.Datetime,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toStudyResponse(s *model.Study) studyResponse {
	return studyResponse{
		ID:            s.ID,
		Session:       s.SessionID,
		What:          s.What,
		Understanding: s.Understanding,
		Time:          s.Time,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toDistractionResponse(d *model.Distraction) distractionResponse {
	return distractionResponse{
		ID:        d.ID,
		Session:   d.SessionID,
		Type:      d.Type,
		TimeTaken: d.TimeTaken,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toWorkResponse(w *model.AssignmentWorkWithAssignment) workResponse {
	return workResponse{
		ID:         w.ID,
		Session:    w.SessionID,
		Time:       w.Time,
		Assignment: toAssignmentResponse(&w.Assignment),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}
